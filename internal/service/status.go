package service

import (
	"context"
	"fmt"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
)

// publishStatus notifies every local socket and, when a broker is
// configured, every other instance.
func (s *coordinator) publishStatus(ctx context.Context, streamID string, isLive bool, viewerCount int) {
	l := log.Ctx(ctx)

	if err := s.emitter.BroadcastAll(&domain.StreamStatusChangedMessage{
		Event:       domain.EventStreamStatusChanged,
		StreamID:    streamID,
		IsLive:      isLive,
		ViewerCount: viewerCount,
	}); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to broadcast stream status")
	}

	if s.pubsub == nil {
		return
	}

	event, err := pubsub.NewEvent(pubsub.EventStreamStatusChanged, streamID, s.instanceID, &pubsub.StreamStatusPayload{
		StreamID:    streamID,
		IsLive:      isLive,
		ViewerCount: viewerCount,
	})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build stream status event")
		return
	}
	if err := s.pubsub.Publish(ctx, pubsub.StreamStatusChannel(streamID), event); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to publish stream status")
	}
}

func (s *coordinator) Start(ctx context.Context) error {
	if s.pubsub == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	eventCh, err := s.pubsub.SubscribePattern(ctx, pubsub.PatternStreamStatus)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to stream status: %w", err)
	}

	go s.relayStatusEvents(ctx, eventCh)

	l := log.L()
	l.Info().Str(log.FieldInstance, s.instanceID).Msg("stream status relay started")
	return nil
}

func (s *coordinator) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *coordinator) relayStatusEvents(ctx context.Context, eventCh <-chan *pubsub.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			s.relayStatusEvent(event)
		}
	}
}

// relayStatusEvent forwards a status change published by another instance
// to local sockets. Events from this instance were already delivered.
func (s *coordinator) relayStatusEvent(event *pubsub.Event) {
	l := log.L()

	if event.Type != pubsub.EventStreamStatusChanged || event.Origin == s.instanceID {
		return
	}

	var payload pubsub.StreamStatusPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		l.Warn().Err(err).Msg("failed to unmarshal stream status payload")
		return
	}

	if err := s.emitter.BroadcastAll(&domain.StreamStatusChangedMessage{
		Event:       domain.EventStreamStatusChanged,
		StreamID:    payload.StreamID,
		IsLive:      payload.IsLive,
		ViewerCount: payload.ViewerCount,
	}); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, payload.StreamID).Msg("failed to relay stream status")
	}
}
