package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/kafka"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/mocks"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/recap"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/storage"
)

func TestHandleDisconnect_Broadcaster(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	env := newTestEnv(t)

	producer := mocks.NewMockStreamEventProducer(ctrl)
	producer.EXPECT().ProduceStreamStarted(gomock.Any(), streamID, creatorID).Return(nil)
	producer.EXPECT().ProduceStreamEnded(gomock.Any(), streamID, creatorID, kafka.ReasonDisconnect).Return(nil).Times(1)
	env.svc.producer = producer

	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	req.NoError(err)
	env.svc.recaps = recap.NewTracker(store)

	broadcaster := newClient("c1")
	env.start(t, broadcaster)
	env.join(t, newClient("c2"), viewerID)
	env.join(t, newClient("c3"), poorID)
	env.emitter.reset()

	// when
	req.NoError(env.svc.HandleDisconnect(context.Background(), broadcaster))

	// then
	req.False(env.isLive(t))
	req.Empty(env.emitter.to("c1"))
	req.Equal([]string{domain.EventStreamEnded}, env.emitter.events("c2"))
	req.Equal([]string{domain.EventStreamEnded}, env.emitter.events("c3"))

	global := env.emitter.to(broadcastTarget)
	req.Len(global, 1)
	req.Equal(false, global[0].Body["isLive"])

	_, ok := env.registry.FindRoom(streamID)
	req.False(ok)
	_, ok = env.registry.ConnectionForUser(creatorID)
	req.False(ok)

	recaps, err := env.svc.Recaps(context.Background(), streamID)
	req.NoError(err)
	req.Len(recaps, 1)
	req.Equal(kafka.ReasonDisconnect, recaps[0].EndReason)
	req.Equal(2, recaps[0].PeakViewers)
	req.Equal(2, recaps[0].TotalJoins)
}

func TestHandleDisconnect_Viewer(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	env.start(t, newClient("c1"))
	viewer := newClient("c2")
	env.join(t, viewer, viewerID)
	env.join(t, newClient("c3"), poorID)
	env.emitter.reset()

	// when
	req.NoError(env.svc.HandleDisconnect(context.Background(), viewer))

	// then
	req.True(env.isLive(t))
	req.Empty(env.emitter.to("c2"))

	toBroadcaster := env.emitter.to("c1")
	req.Equal([]string{domain.EventStreamUpdate, domain.EventViewerCountUpdate}, env.emitter.events("c1"))
	req.Equal("c2", toBroadcaster[1].Body["viewerId"])
	req.Equal(domain.UpdateViewerLeft, toBroadcaster[1].Body["type"])
	req.EqualValues(1, toBroadcaster[1].Body["viewerCount"])
	req.Equal([]string{domain.EventStreamUpdate}, env.emitter.events("c3"))

	snap, ok := env.registry.FindRoom(streamID)
	req.True(ok)
	req.Equal([]string{"c3"}, snap.ViewerIDs)
}

func TestHandleDisconnect_UnknownConnection(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	req.NoError(env.svc.HandleDisconnect(context.Background(), newClient("ghost")))

	req.Empty(env.emitter.frames)
}

func TestHandleDisconnect_ReplacedBroadcasterLeavesRoomAlone(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	old := newClient("c1")
	env.start(t, old)
	env.start(t, newClient("c9"))
	env.emitter.reset()

	// when the superseded socket finally closes
	req.NoError(env.svc.HandleDisconnect(context.Background(), old))

	// then
	req.True(env.isLive(t))
	snap, ok := env.registry.FindRoom(streamID)
	req.True(ok)
	req.Equal("c9", snap.BroadcasterConnID)
	req.Empty(env.emitter.frames)
}
