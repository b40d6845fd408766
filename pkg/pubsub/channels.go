package pubsub

import (
	"fmt"
	"strings"
)

// Channel layout is "{scope}:stream:{streamID}:{topic}". Redis uses it as is;
// the Kafka driver maps scope+topic to a Kafka topic and streamID to the key.
const (
	channelStreamStatus = "coord:stream:%s:status"

	// PatternStreamStatus matches the status channel of every stream.
	PatternStreamStatus = "coord:stream:*:status"
)

// Event types carried on coordinator channels.
const (
	EventStreamStatusChanged = "stream_status_changed"
)

// StreamStatusChannel returns the channel that carries live/offline and
// viewer-count changes for one stream.
func StreamStatusChannel(streamID string) string {
	return fmt.Sprintf(channelStreamStatus, streamID)
}

// StreamStatusPayload mirrors the socket stream-status-changed event.
type StreamStatusPayload struct {
	StreamID    string `json:"stream_id"`
	IsLive      bool   `json:"is_live"`
	ViewerCount int    `json:"viewer_count"`
}

// splitChannel breaks a channel into its scope, stream id and topic parts.
func splitChannel(channel string) (scope, streamID, topic string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[1] != "stream" || parts[0] == "" || parts[3] == "" {
		return "", "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0], parts[2], parts[3], nil
}
