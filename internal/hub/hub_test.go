package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(config.WebSocketConfig{SendBuffer: 4})
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func newTestClient(h *Hub, id string, buffer int) *Client {
	c := NewClient(id, h, nil, config.WebSocketConfig{SendBuffer: buffer})
	h.Register(c)
	return c
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	case <-time.After(time.Second):
		t.Fatalf("no frame for %s", c.ID)
		return nil
	}
}

func TestSendToClient_PreservesOrder(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	c := newTestClient(h, "c1", 4)

	req.NoError(h.SendToClient("c1", map[string]int{"n": 1}))
	req.NoError(h.SendToClient("c1", map[string]int{"n": 2}))
	req.NoError(h.SendToClient("missing", map[string]int{"n": 3}))

	req.EqualValues(1, receive(t, c)["n"])
	req.EqualValues(2, receive(t, c)["n"])
}

func TestSendToClients_OnlyListed(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	a := newTestClient(h, "a", 4)
	b := newTestClient(h, "b", 4)
	other := newTestClient(h, "other", 4)

	req.NoError(h.SendToClients([]string{"a", "b"}, map[string]string{"event": "stream-update"}))

	req.Equal("stream-update", receive(t, a)["event"])
	req.Equal("stream-update", receive(t, b)["event"])
	req.Len(other.Send, 0)
}

func TestBroadcastAll(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	a := newTestClient(h, "a", 4)
	b := newTestClient(h, "b", 4)

	req.NoError(h.BroadcastAll(map[string]string{"event": "stream-status-changed"}))

	req.Equal("stream-status-changed", receive(t, a)["event"])
	req.Equal("stream-status-changed", receive(t, b)["event"])
}

func TestBroadcastAll_KeepsOrderWithDirectSends(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	for i := 0; i < 200; i++ {
		// given
		c := newTestClient(h, "v", 4)

		// when
		req.NoError(h.BroadcastAll(map[string]string{"event": "stream-status-changed"}))
		req.NoError(h.SendToClient("v", map[string]string{"event": "stream-update"}))

		// then
		req.Len(c.Send, 2)
		req.Equal("stream-status-changed", receive(t, c)["event"])
		req.Equal("stream-update", receive(t, c)["event"])
	}
}

func TestFullBufferDropsClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	newTestClient(h, "slow", 1)

	req.NoError(h.SendToClient("slow", "first"))
	req.NoError(h.SendToClient("slow", "second"))

	req.Eventually(func() bool { return !h.IsConnected("slow") }, time.Second, 10*time.Millisecond)
}

func TestUnregisterIgnoresReplacedClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	old := NewClient("c1", h, nil, config.WebSocketConfig{})
	h.Register(old)
	current := newTestClient(h, "c1", 4)

	h.Unregister(old)

	req.True(h.IsConnected("c1"))
	req.Equal(1, h.ClientCount())
	req.NoError(h.SendToClient("c1", "still here"))
	select {
	case <-current.Send:
	case <-time.After(time.Second):
		t.Fatal("current client lost")
	}
}
