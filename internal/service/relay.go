package service

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

func (s *coordinator) HandleSignal(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	l := log.Ctx(ctx).With().
		Str(log.FieldStreamID, msg.StreamID).
		Str(log.FieldEvent, msg.Event).
		Str(log.FieldTargetID, msg.TargetID).
		Logger()

	snap, ok := s.registry.FindRoom(msg.StreamID)
	if !ok {
		l.Debug().Msg("signal dropped: no room")
		return nil
	}

	var target string
	switch {
	case c.ID == snap.BroadcasterConnID:
		if msg.TargetID == "" || !snap.HasViewer(msg.TargetID) {
			l.Debug().Msg("signal dropped: target is not a viewer")
			return nil
		}
		target = msg.TargetID
	case snap.HasViewer(c.ID):
		if msg.TargetID != "" && msg.TargetID != snap.BroadcasterConnID {
			l.Debug().Msg("signal dropped: viewers may only signal the broadcaster")
			return nil
		}
		target = snap.BroadcasterConnID
	default:
		l.Debug().Msg("signal dropped: sender is not in the room")
		return nil
	}

	return s.emitter.SendToClient(target, &domain.SignalRelayMessage{
		Event:    msg.Event,
		StreamID: msg.StreamID,
		SenderID: c.ID,
		Payload:  msg.Payload,
	})
}
