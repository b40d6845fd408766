//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_producer.go -package=mocks
package kafka

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
)

// StreamEvent is the record written for downstream consumers.
type StreamEvent struct {
	Type          string `json:"type"` // "stream_started" | "stream_ended" | "tip_sent"
	StreamID      string `json:"stream_id"`
	BroadcasterID string `json:"broadcaster_id,omitempty"`
	Reason        string `json:"reason,omitempty"` // "explicit" | "disconnect"
	SenderID      string `json:"sender_id,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// Event types
const (
	EventStreamStarted = "stream_started"
	EventStreamEnded   = "stream_ended"
	EventTipSent       = "tip_sent"
)

// End reasons
const (
	ReasonExplicit   = "explicit"
	ReasonDisconnect = "disconnect"
)

// StreamEventProducer publishes stream lifecycle and tip events.
type StreamEventProducer interface {
	ProduceStreamStarted(ctx context.Context, streamID, broadcasterID string) error
	ProduceStreamEnded(ctx context.Context, streamID, broadcasterID, reason string) error
	ProduceTipSent(ctx context.Context, tx *domain.Transaction) error
	Close() error
}
