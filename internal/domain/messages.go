package domain

import (
	"encoding/json"
	"time"
)

// Socket events from client.
const (
	EventIdentify     = "identify"
	EventStartStream  = "start-stream"
	EventJoinStream   = "join-stream"
	EventLeaveStream  = "leave-stream"
	EventEndStream    = "end-stream"
	EventStopStream   = "stop-stream" // legacy alias of end-stream
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventChatMessage  = "chat-message"
	EventTipMessage   = "tip-message"
	EventPing         = "ping"
)

// Socket events to client. Signaling, chat and tip events reuse their inbound names.
const (
	EventIdentified          = "identified"
	EventStreamStarted       = "stream-started"
	EventStreamJoined        = "stream-joined"
	EventStreamUpdate        = "stream-update"
	EventViewerCountUpdate   = "viewer-count-update"
	EventStreamStatusChanged = "stream-status-changed"
	EventStreamEnded         = "stream-ended"
	EventStreamError         = "stream-error"
	EventTipError            = "tip-error"
	EventPong                = "pong"
)

// Kinds of stream-update and viewer-count-update.
const (
	UpdateViewerJoined = "viewer-joined"
	UpdateViewerLeft   = "viewer-left"
)

// Error codes carried by stream-error and tip-error.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUnreachable         = "STREAM_UNREACHABLE"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// BaseMessage carries the discriminator shared by every socket frame.
type BaseMessage struct {
	Event string `json:"event"`
}

// Server -> Client messages

// IdentifiedMessage acknowledges an identify event.
type IdentifiedMessage struct {
	Event        string `json:"event"`
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

// StreamStartedMessage acknowledges start-stream to the broadcaster.
type StreamStartedMessage struct {
	Event       string `json:"event"`
	StreamID    string `json:"streamId"`
	ViewerCount int    `json:"viewerCount"`
}

// StreamJoinedMessage acknowledges join-stream to the viewer.
type StreamJoinedMessage struct {
	Event         string `json:"event"`
	StreamID      string `json:"streamId"`
	BroadcasterID string `json:"broadcasterId"`
	ViewerCount   int    `json:"viewerCount"`
}

// StreamUpdateMessage is the room-wide viewer count change.
type StreamUpdateMessage struct {
	Event       string `json:"event"`
	StreamID    string `json:"streamId"`
	ViewerCount int    `json:"viewerCount"`
	Type        string `json:"type"`
}

// ViewerCountUpdateMessage is the broadcaster-only count change. ViewerID lets
// the broadcaster address its offer to the new viewer.
type ViewerCountUpdateMessage struct {
	Event       string `json:"event"`
	StreamID    string `json:"streamId"`
	ViewerCount int    `json:"viewerCount"`
	ViewerID    string `json:"viewerId"`
	Type        string `json:"type"`
}

// StreamStatusChangedMessage is the platform-wide live/offline notification.
type StreamStatusChangedMessage struct {
	Event       string `json:"event"`
	StreamID    string `json:"streamId"`
	IsLive      bool   `json:"isLive"`
	ViewerCount int    `json:"viewerCount"`
}

// StreamEndedMessage tells room members to stop reconnecting.
type StreamEndedMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId"`
	Message  string `json:"message"`
}

// SignalRelayMessage forwards an offer, answer or ICE candidate. Payload is untouched.
type SignalRelayMessage struct {
	Event    string          `json:"event"`
	StreamID string          `json:"streamId"`
	SenderID string          `json:"senderId"`
	Payload  json.RawMessage `json:"payload"`
}

// ChatBroadcastMessage is the normalized chat envelope.
type ChatBroadcastMessage struct {
	Event      string    `json:"event"`
	StreamID   string    `json:"streamId"`
	UserID     string    `json:"userId"`
	SenderName string    `json:"senderName"`
	SenderRole string    `json:"senderRole"`
	Message    string    `json:"message"`
	TipAmount  *int64    `json:"tipAmount,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// TipBroadcastMessage announces a completed tip to the room.
type TipBroadcastMessage struct {
	Event         string    `json:"event"`
	StreamID      string    `json:"streamId"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	Amount        int64     `json:"amount"`
	Message       string    `json:"message,omitempty"`
	TransactionID string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

// ErrorMessage is sent as stream-error or tip-error to one connection.
type ErrorMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// PongMessage answers ping.
type PongMessage struct {
	Event string `json:"event"`
}

// NewStreamError creates a stream-error message.
func NewStreamError(streamID, code, message string) *ErrorMessage {
	return &ErrorMessage{
		Event:    EventStreamError,
		StreamID: streamID,
		Code:     code,
		Message:  message,
	}
}

// NewTipError creates a tip-error message.
func NewTipError(streamID, code, message string) *ErrorMessage {
	return &ErrorMessage{
		Event:    EventTipError,
		StreamID: streamID,
		Code:     code,
		Message:  message,
	}
}
