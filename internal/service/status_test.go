package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
)

// memoryPubSub is an in-process PubSub that fans every publish out to all
// pattern subscribers.
type memoryPubSub struct {
	mu        sync.Mutex
	published []*pubsub.Event
	channels  []string
	subs      []chan *pubsub.Event
}

func (m *memoryPubSub) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	m.channels = append(m.channels, channel)
	for _, ch := range m.subs {
		ch <- event
	}
	return nil
}

func (m *memoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *pubsub.Event, error) {
	return m.SubscribePattern(ctx, channel)
}

func (m *memoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *pubsub.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *pubsub.Event, 16)
	m.subs = append(m.subs, ch)
	return ch, nil
}

func (m *memoryPubSub) Unsubscribe(ctx context.Context, channel string) error { return nil }
func (m *memoryPubSub) Close() error                                          { return nil }

func TestPublishStatus_PublishesToBroker(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	bus := &memoryPubSub{}
	env.svc.pubsub = bus

	// when
	env.start(t, newClient("c1"))

	// then
	req.Len(bus.published, 1)
	req.Equal(pubsub.StreamStatusChannel(streamID), bus.channels[0])
	event := bus.published[0]
	req.Equal(pubsub.EventStreamStatusChanged, event.Type)
	req.Equal("test-instance", event.Origin)

	var payload pubsub.StreamStatusPayload
	req.NoError(event.UnmarshalPayload(&payload))
	req.Equal(pubsub.StreamStatusPayload{StreamID: streamID, IsLive: true}, payload)
}

func TestRelayStatusEvent(t *testing.T) {
	env := newTestEnv(t)

	foreign, err := pubsub.NewEvent(pubsub.EventStreamStatusChanged, streamID, "other-instance",
		&pubsub.StreamStatusPayload{StreamID: streamID, IsLive: true, ViewerCount: 4})
	require.NoError(t, err)
	own, err := pubsub.NewEvent(pubsub.EventStreamStatusChanged, streamID, "test-instance",
		&pubsub.StreamStatusPayload{StreamID: streamID, IsLive: true})
	require.NoError(t, err)
	other, err := pubsub.NewEvent("something_else", streamID, "other-instance", struct{}{})
	require.NoError(t, err)

	cases := []struct {
		name    string
		event   *pubsub.Event
		relayed bool
	}{
		{"foreign status is relayed", foreign, true},
		{"own status is skipped", own, false},
		{"other event types are skipped", other, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			env.emitter.reset()

			env.svc.relayStatusEvent(tc.event)

			global := env.emitter.to(broadcastTarget)
			if !tc.relayed {
				req.Empty(global)
				return
			}
			req.Len(global, 1)
			req.Equal(domain.EventStreamStatusChanged, global[0].Event)
			req.Equal(streamID, global[0].Body["streamId"])
			req.Equal(true, global[0].Body["isLive"])
			req.EqualValues(4, global[0].Body["viewerCount"])
		})
	}
}

func TestStart_RelaysForeignStatus(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	bus := &memoryPubSub{}
	env.svc.pubsub = bus

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(env.svc.Start(ctx))
	defer env.svc.Stop()

	event, err := pubsub.NewEvent(pubsub.EventStreamStatusChanged, "S7", "other-instance",
		&pubsub.StreamStatusPayload{StreamID: "S7", IsLive: false})
	req.NoError(err)

	// when
	req.NoError(bus.Publish(ctx, pubsub.StreamStatusChannel("S7"), event))

	// then
	req.Eventually(func() bool {
		return len(env.emitter.to(broadcastTarget)) == 1
	}, time.Second, 10*time.Millisecond)
}
