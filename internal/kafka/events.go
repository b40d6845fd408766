package kafka

import (
	"time"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
)

func streamStartedEvent(streamID, broadcasterID string, at time.Time) *StreamEvent {
	return &StreamEvent{
		Type:          EventStreamStarted,
		StreamID:      streamID,
		BroadcasterID: broadcasterID,
		Timestamp:     at.Unix(),
	}
}

func streamEndedEvent(streamID, broadcasterID, reason string, at time.Time) *StreamEvent {
	return &StreamEvent{
		Type:          EventStreamEnded,
		StreamID:      streamID,
		BroadcasterID: broadcasterID,
		Reason:        reason,
		Timestamp:     at.Unix(),
	}
}

// tipSentEvent is stamped with the ledger time, not the publish time.
func tipSentEvent(tx *domain.Transaction) *StreamEvent {
	return &StreamEvent{
		Type:          EventTipSent,
		StreamID:      tx.StreamID,
		BroadcasterID: tx.RecipientID,
		SenderID:      tx.SenderID,
		Amount:        tx.Amount,
		TransactionID: tx.ID,
		Timestamp:     tx.CreatedAt.Unix(),
	}
}
