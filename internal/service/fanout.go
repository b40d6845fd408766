package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/audit"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

func (s *coordinator) HandleChat(ctx context.Context, c *hub.Client, msg *domain.ChatMessage) error {
	snap, ok := s.registry.FindRoom(msg.StreamID)
	if !ok {
		return s.streamError(c, msg.StreamID, domain.ErrCodeNotFound, "Stream not found")
	}
	if !snap.IsMember(c.ID) {
		return s.streamError(c, msg.StreamID, domain.ErrCodeForbidden, "Join the stream before chatting")
	}

	text := strings.TrimSpace(msg.Message)
	if text == "" || utf8.RuneCountInString(text) > s.chatMaxLength {
		return s.streamError(c, msg.StreamID, domain.ErrCodeBadRequest,
			fmt.Sprintf("Message must be between 1 and %d characters", s.chatMaxLength))
	}

	userID := msg.UserID
	if userID == "" {
		userID, _ = s.registry.UserForConnection(c.ID)
	}
	name := msg.DisplayName()
	if name == "" {
		name = c.Session.GetUsername()
	}
	if name == "" {
		name = "Anonymous"
	}

	if err := s.emitter.SendToClients(snap.Members(), &domain.ChatBroadcastMessage{
		Event:      domain.EventChatMessage,
		StreamID:   msg.StreamID,
		UserID:     userID,
		SenderName: name,
		SenderRole: msg.DisplayRole(),
		Message:    text,
		TipAmount:  msg.TipAmount,
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		return err
	}

	if s.recaps != nil {
		s.recaps.RecordChat(msg.StreamID)
	}
	return nil
}

func (s *coordinator) HandleTip(ctx context.Context, c *hub.Client, msg *domain.TipMessage) error {
	l := log.Ctx(ctx).With().Str(log.FieldStreamID, msg.StreamID).Str(log.FieldUserID, msg.UserID).Logger()
	switch {
	case strings.TrimSpace(msg.StreamID) == "":
		return s.tipError(c, msg.StreamID, domain.ErrCodeBadRequest, "streamId is required")
	case strings.TrimSpace(msg.UserID) == "":
		return s.tipError(c, msg.StreamID, domain.ErrCodeBadRequest, "userId is required")
	case msg.Amount <= 0:
		return s.tipError(c, msg.StreamID, domain.ErrCodeBadRequest, "Tip amount must be positive")
	}
	s.identify(c, msg.UserID, msg.Username, "")

	stream, err := s.streams.GetByID(ctx, msg.StreamID)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return s.tipError(c, msg.StreamID, domain.ErrCodeNotFound, "Stream not found")
		}
		l.Error().Err(err).Msg("failed to load stream for tip")
		return s.tipError(c, msg.StreamID, domain.ErrCodeInternalError, "Tip failed")
	}
	if stream.CreatorID == msg.UserID {
		return s.tipError(c, msg.StreamID, domain.ErrCodeBadRequest, "You cannot tip your own stream")
	}

	recipient, err := s.users.GetByID(ctx, stream.CreatorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return s.tipError(c, msg.StreamID, domain.ErrCodeNotFound, "Recipient not found")
		}
		l.Error().Err(err).Msg("failed to load tip recipient")
		return s.tipError(c, msg.StreamID, domain.ErrCodeInternalError, "Tip failed")
	}

	if _, ok := s.registry.FindRoom(msg.StreamID); !ok || !stream.IsLive {
		return s.tipError(c, msg.StreamID, domain.ErrCodeNotFound, "Stream is not live")
	}

	sender, err := s.users.GetByID(ctx, msg.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return s.tipError(c, msg.StreamID, domain.ErrCodeNotFound, "Sender not found")
		}
		l.Error().Err(err).Msg("failed to load tip sender")
		return s.tipError(c, msg.StreamID, domain.ErrCodeInternalError, "Tip failed")
	}
	if sender.Wallet < msg.Amount {
		return s.tipError(c, msg.StreamID, domain.ErrCodeInsufficientBalance, "Insufficient balance")
	}

	tx, err := s.ledger.Transfer(ctx, domain.Tip{
		StreamID:    msg.StreamID,
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      msg.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance):
			return s.tipError(c, msg.StreamID, domain.ErrCodeInsufficientBalance, "Insufficient balance")
		case errors.Is(err, domain.ErrUserNotFound):
			return s.tipError(c, msg.StreamID, domain.ErrCodeNotFound, "Sender not found")
		case errors.Is(err, domain.ErrSelfTip), errors.Is(err, domain.ErrInvalidAmount):
			return s.tipError(c, msg.StreamID, domain.ErrCodeBadRequest, err.Error())
		default:
			l.Error().Err(err).Msg("tip transfer failed")
			return s.tipError(c, msg.StreamID, domain.ErrCodeInternalError, "Tip failed")
		}
	}

	username := msg.Username
	if username == "" {
		username = sender.Username
	}

	// membership may have changed during the transfer
	if snap, ok := s.registry.FindRoom(msg.StreamID); ok {
		if err := s.emitter.SendToClients(snap.Members(), &domain.TipBroadcastMessage{
			Event:         domain.EventTipMessage,
			StreamID:      msg.StreamID,
			UserID:        sender.ID,
			Username:      username,
			Amount:        tx.Amount,
			Message:       strings.TrimSpace(msg.Message),
			TransactionID: tx.ID,
			Timestamp:     tx.CreatedAt,
		}); err != nil {
			l.Warn().Err(err).Msg("failed to broadcast tip")
		}
	}

	if s.producer != nil {
		if err := s.producer.ProduceTipSent(ctx, tx); err != nil {
			l.Warn().Err(err).Msg("failed to produce tip_sent event")
		}
	}
	if s.recaps != nil {
		s.recaps.RecordTip(msg.StreamID, tx.Amount)
	}
	audit.LogWithDetail(ctx, audit.ActionTipSend, sender.ID, msg.StreamID, fmt.Sprintf("amount=%d tx=%s", tx.Amount, tx.ID), "tip sent")
	return nil
}
