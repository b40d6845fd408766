package service

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/kafka"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

func (s *coordinator) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	l := log.Ctx(ctx)
	broadcasting, viewing := s.registry.Memberships(c.ID)

	for _, streamID := range broadcasting {
		if err := s.endStream(ctx, c, streamID, kafka.ReasonDisconnect); err != nil {
			l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to end stream on disconnect")
		}
	}

	for _, streamID := range viewing {
		snap, removed, exists := s.registry.RemoveViewer(streamID, c.ID)
		if removed && exists {
			s.announceViewerChange(ctx, snap, c.ID, domain.UpdateViewerLeft)
		}
	}

	s.registry.UnbindConnection(c.ID)
	l.Debug().Int("broadcasting", len(broadcasting)).Int("viewing", len(viewing)).Msg("connection torn down")
	return nil
}
