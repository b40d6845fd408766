package service

import (
	"context"
	"errors"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/audit"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/kafka"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

const streamEndedText = "The stream has ended"

func (s *coordinator) HandleStartStream(ctx context.Context, c *hub.Client, msg *domain.StartStreamMessage) error {
	l := log.Ctx(ctx).With().Str(log.FieldStreamID, msg.StreamID).Logger()
	s.identify(c, msg.UserID, "", "")

	stream, err := s.streams.GetByID(ctx, msg.StreamID)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return s.streamError(c, msg.StreamID, domain.ErrCodeNotFound, "Stream not found")
		}
		l.Error().Err(err).Msg("failed to load stream")
		return s.streamError(c, msg.StreamID, domain.ErrCodeInternalError, "Failed to start stream")
	}

	if stream.CreatorID != msg.UserID {
		l.Warn().Str(log.FieldUserID, msg.UserID).Msg("start-stream by non-creator rejected")
		return s.streamError(c, msg.StreamID, domain.ErrCodeForbidden, "Only the creator can start this stream")
	}

	// durable flag first; the registry is only touched once it sticks
	if err := s.streams.UpdateStatus(ctx, msg.StreamID, true); err != nil {
		l.Error().Err(err).Msg("failed to mark stream live")
		return s.streamError(c, msg.StreamID, domain.ErrCodeInternalError, "Failed to start stream")
	}

	snap, replaced, prevConnID, demoted := s.registry.CreateRoom(msg.StreamID, c.ID, msg.UserID)
	if replaced {
		l.Info().Str("previous_conn_id", prevConnID).Msg("broadcaster reassociated")
	}
	if s.recaps != nil {
		s.recaps.Start(msg.StreamID, c.ID)
		s.recaps.ObserveViewers(msg.StreamID, snap.ViewerCount, false)
	}

	s.publishStatus(ctx, msg.StreamID, true, snap.ViewerCount)

	if err := s.emitter.SendToClient(c.ID, &domain.StreamStartedMessage{
		Event:       domain.EventStreamStarted,
		StreamID:    msg.StreamID,
		ViewerCount: snap.ViewerCount,
	}); err != nil {
		return err
	}
	if demoted {
		s.announceViewerChange(ctx, snap, c.ID, domain.UpdateViewerLeft)
	}

	if s.producer != nil {
		if err := s.producer.ProduceStreamStarted(ctx, msg.StreamID, msg.UserID); err != nil {
			l.Warn().Err(err).Msg("failed to produce stream_started event")
		}
	}
	audit.Log(ctx, audit.ActionStreamStart, msg.UserID, msg.StreamID, "stream started")
	return nil
}

func (s *coordinator) HandleJoinStream(ctx context.Context, c *hub.Client, msg *domain.JoinStreamMessage) error {
	l := log.Ctx(ctx).With().Str(log.FieldStreamID, msg.StreamID).Logger()
	s.identify(c, msg.UserID, "", "")

	snap, added, err := s.addViewer(ctx, msg.StreamID, c.ID)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrBroadcasterCannotView):
			return s.streamError(c, msg.StreamID, domain.ErrCodeBadRequest, "Broadcaster cannot join as a viewer")
		case errors.Is(err, domain.ErrStreamNotFound), errors.Is(err, registry.ErrRoomNotFound):
			return s.streamError(c, msg.StreamID, domain.ErrCodeNotFound, "Stream not found")
		case errors.Is(err, registry.ErrBroadcasterUnavailable):
			return s.streamError(c, msg.StreamID, domain.ErrCodeUnreachable, "Broadcaster is not connected")
		default:
			l.Error().Err(err).Msg("failed to join stream")
			return s.streamError(c, msg.StreamID, domain.ErrCodeInternalError, "Failed to join stream")
		}
	}

	if err := s.emitter.SendToClient(c.ID, &domain.StreamJoinedMessage{
		Event:         domain.EventStreamJoined,
		StreamID:      msg.StreamID,
		BroadcasterID: snap.BroadcasterConnID,
		ViewerCount:   snap.ViewerCount,
	}); err != nil {
		return err
	}

	if added {
		l.Debug().Int("viewer_count", snap.ViewerCount).Msg("viewer joined")
		s.announceViewerChange(ctx, snap, c.ID, domain.UpdateViewerJoined)
	}
	return nil
}

// addViewer joins connID to the room, rebuilding the room from the durable
// live flag when this instance has none.
func (s *coordinator) addViewer(ctx context.Context, streamID, connID string) (registry.Snapshot, bool, error) {
	snap, added, err := s.registry.AddViewer(streamID, connID)
	if !errors.Is(err, registry.ErrRoomNotFound) {
		return snap, added, err
	}

	stream, err := s.streams.GetByID(ctx, streamID)
	if err != nil {
		return registry.Snapshot{}, false, err
	}
	if !stream.IsLive {
		return registry.Snapshot{}, false, domain.ErrStreamNotFound
	}

	rebuilt, err := s.registry.ReconcileFromPersisted(streamID, stream.CreatorID)
	if err != nil {
		return registry.Snapshot{}, false, err
	}
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldStreamID, streamID).
		Str(log.FieldConnID, rebuilt.BroadcasterConnID).
		Msg("room rebuilt from persisted live flag")
	if s.recaps != nil {
		s.recaps.Start(streamID, rebuilt.BroadcasterConnID)
	}

	return s.registry.AddViewer(streamID, connID)
}

func (s *coordinator) HandleLeaveStream(ctx context.Context, c *hub.Client, msg *domain.LeaveStreamMessage) error {
	snap, removed, exists := s.registry.RemoveViewer(msg.StreamID, c.ID)
	if removed && exists {
		s.announceViewerChange(ctx, snap, c.ID, domain.UpdateViewerLeft)
	}
	return nil
}

// announceViewerChange emits the room update, the broadcaster-only count and
// the global status for one viewer joining or leaving.
func (s *coordinator) announceViewerChange(ctx context.Context, snap registry.Snapshot, viewerID, kind string) {
	l := log.Ctx(ctx)

	if err := s.emitter.SendToClients(snap.Members(), &domain.StreamUpdateMessage{
		Event:       domain.EventStreamUpdate,
		StreamID:    snap.StreamID,
		ViewerCount: snap.ViewerCount,
		Type:        kind,
	}); err != nil {
		l.Warn().Err(err).Msg("failed to send stream update")
	}

	if err := s.emitter.SendToClient(snap.BroadcasterConnID, &domain.ViewerCountUpdateMessage{
		Event:       domain.EventViewerCountUpdate,
		StreamID:    snap.StreamID,
		ViewerCount: snap.ViewerCount,
		ViewerID:    viewerID,
		Type:        kind,
	}); err != nil {
		l.Warn().Err(err).Msg("failed to send viewer count update")
	}

	s.publishStatus(ctx, snap.StreamID, true, snap.ViewerCount)

	if s.recaps != nil {
		s.recaps.ObserveViewers(snap.StreamID, snap.ViewerCount, kind == domain.UpdateViewerJoined)
	}
}

func (s *coordinator) HandleEndStream(ctx context.Context, c *hub.Client, msg *domain.EndStreamMessage) error {
	s.identify(c, msg.UserID, "", "")
	return s.endStream(ctx, c, msg.StreamID, kafka.ReasonExplicit)
}

// endStream is the single end path for end-stream, stop-stream and a
// broadcaster disconnect. Only the connection that owns the room may end it.
func (s *coordinator) endStream(ctx context.Context, c *hub.Client, streamID, reason string) error {
	l := log.Ctx(ctx).With().Str(log.FieldStreamID, streamID).Str("reason", reason).Logger()
	explicit := reason == kafka.ReasonExplicit

	snap, ok := s.registry.FindRoom(streamID)
	if !ok {
		if explicit {
			return s.endOrphanedStream(ctx, c, streamID)
		}
		return nil
	}
	if snap.BroadcasterConnID != c.ID {
		l.Info().Str("owner_conn_id", snap.BroadcasterConnID).Msg("end ignored: connection no longer owns the room")
		return nil
	}

	if err := s.streams.UpdateStatus(ctx, streamID, false); err != nil {
		if explicit {
			l.Error().Err(err).Msg("failed to mark stream offline")
			return s.streamError(c, streamID, domain.ErrCodeInternalError, "Failed to end stream")
		}
		l.Error().Err(err).Msg("failed to mark stream offline, tearing down anyway")
	}

	final, err := s.registry.RemoveBroadcaster(streamID, c.ID)
	if err != nil {
		if errors.Is(err, registry.ErrStaleOwnership) {
			// a restart won the race; put the flag back for the new owner
			l.Info().Msg("end lost race with restart, restoring live flag")
			if err := s.streams.UpdateStatus(ctx, streamID, true); err != nil {
				l.Error().Err(err).Msg("failed to restore live flag")
			}
		}
		return nil
	}

	recipients := final.Members()
	if !explicit {
		recipients = final.ViewerIDs
	}
	if err := s.emitter.SendToClients(recipients, &domain.StreamEndedMessage{
		Event:    domain.EventStreamEnded,
		StreamID: streamID,
		Message:  streamEndedText,
	}); err != nil {
		l.Warn().Err(err).Msg("failed to send stream ended")
	}

	s.publishStatus(ctx, streamID, false, 0)
	s.afterStreamEnded(ctx, streamID, final.BroadcasterUserID, reason)
	l.Info().Int("viewer_count", final.ViewerCount).Msg("stream ended")
	return nil
}

// endOrphanedStream clears a live flag left behind when no room exists on
// this instance, e.g. after a restart. Only the creator may do this.
func (s *coordinator) endOrphanedStream(ctx context.Context, c *hub.Client, streamID string) error {
	l := log.Ctx(ctx).With().Str(log.FieldStreamID, streamID).Logger()

	stream, err := s.streams.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return s.streamError(c, streamID, domain.ErrCodeNotFound, "Stream not found")
		}
		l.Error().Err(err).Msg("failed to load stream")
		return s.streamError(c, streamID, domain.ErrCodeInternalError, "Failed to end stream")
	}
	if !stream.IsLive {
		return s.streamError(c, streamID, domain.ErrCodeNotFound, "Stream is not live")
	}

	userID := c.Session.GetUserID()
	if userID == "" || userID != stream.CreatorID {
		return s.streamError(c, streamID, domain.ErrCodeForbidden, "Only the creator can end this stream")
	}

	if err := s.streams.UpdateStatus(ctx, streamID, false); err != nil {
		l.Error().Err(err).Msg("failed to mark stream offline")
		return s.streamError(c, streamID, domain.ErrCodeInternalError, "Failed to end stream")
	}

	if err := s.emitter.SendToClient(c.ID, &domain.StreamEndedMessage{
		Event:    domain.EventStreamEnded,
		StreamID: streamID,
		Message:  streamEndedText,
	}); err != nil {
		l.Warn().Err(err).Msg("failed to send stream ended")
	}

	s.publishStatus(ctx, streamID, false, 0)
	s.afterStreamEnded(ctx, streamID, userID, kafka.ReasonExplicit)
	l.Info().Msg("orphaned live flag cleared")
	return nil
}

func (s *coordinator) afterStreamEnded(ctx context.Context, streamID, userID, reason string) {
	l := log.Ctx(ctx)

	if s.producer != nil {
		if err := s.producer.ProduceStreamEnded(ctx, streamID, userID, reason); err != nil {
			l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to produce stream_ended event")
		}
	}
	if s.recaps != nil {
		if _, err := s.recaps.Finish(ctx, streamID, reason); err != nil {
			l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to store stream recap")
		}
	}
	audit.LogWithDetail(ctx, audit.ActionStreamEnd, userID, streamID, reason, "stream ended")
}
