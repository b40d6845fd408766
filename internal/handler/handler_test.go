package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/recap"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/response"
)

// fakeService records dispatched events and answers ping through the hub.
type fakeService struct {
	hub *hub.Hub

	mu           sync.Mutex
	calls        []string
	disconnected chan string

	rooms     []registry.Snapshot
	recaps    []recap.Recap
	recapsErr error
}

func (f *fakeService) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, event)
}

func (f *fakeService) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) HandleIdentify(ctx context.Context, c *hub.Client, msg *domain.IdentifyMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleStartStream(ctx context.Context, c *hub.Client, msg *domain.StartStreamMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleJoinStream(ctx context.Context, c *hub.Client, msg *domain.JoinStreamMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleLeaveStream(ctx context.Context, c *hub.Client, msg *domain.LeaveStreamMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleEndStream(ctx context.Context, c *hub.Client, msg *domain.EndStreamMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleSignal(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	f.record(msg.Event)
	return nil
}

func (f *fakeService) HandleChat(ctx context.Context, c *hub.Client, msg *domain.ChatMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandleTip(ctx context.Context, c *hub.Client, msg *domain.TipMessage) error {
	f.record(msg.EventName())
	return nil
}

func (f *fakeService) HandlePing(ctx context.Context, c *hub.Client) error {
	f.record(domain.EventPing)
	return f.hub.SendToClient(c.ID, &domain.PongMessage{Event: domain.EventPong})
}

func (f *fakeService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	f.disconnected <- c.ID
	return nil
}

func (f *fakeService) LiveStreams() []registry.Snapshot { return f.rooms }

func (f *fakeService) Presence(streamID string) (registry.Snapshot, bool) {
	for _, s := range f.rooms {
		if s.StreamID == streamID {
			return s, true
		}
	}
	return registry.Snapshot{}, false
}

func (f *fakeService) Recaps(ctx context.Context, streamID string) ([]recap.Recap, error) {
	return f.recaps, f.recapsErr
}

func (f *fakeService) Start(ctx context.Context) error { return nil }
func (f *fakeService) Stop() error                     { return nil }

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   time.Second,
		PongWait:       5 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}
}

func newTestRouter(svc *fakeService, ws *WSHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	if ws != nil {
		ws.RegisterRoutes(r)
	}
	return r
}

func dialSocket(t *testing.T) (*websocket.Conn, *fakeService) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(testWSConfig())
	go h.Run(ctx)

	svc := &fakeService{hub: h, disconnected: make(chan string, 1)}
	srv := httptest.NewServer(newTestRouter(svc, NewWSHandler(ctx, h, svc, testWSConfig())))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	return conn, svc
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var body map[string]interface{}
	require.NoError(t, conn.ReadJSON(&body))
	return body
}

func TestWebSocket_PingPong(t *testing.T) {
	req := require.New(t)
	conn, svc := dialSocket(t)
	defer conn.Close()

	// when
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"ping"}`)))

	// then
	body := readFrame(t, conn)
	req.Equal(domain.EventPong, body["event"])
	req.Equal([]string{domain.EventPing}, svc.recorded())
}

func TestWebSocket_RejectsBadFrames(t *testing.T) {
	conn, svc := dialSocket(t)
	defer conn.Close()

	cases := []struct {
		name  string
		frame string
	}{
		{"not json", `hello`},
		{"unknown event", `{"event":"dance"}`},
		{"missing stream id", `{"event":"join-stream","userId":"u1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(tc.frame)))

			body := readFrame(t, conn)
			req.Equal(domain.EventStreamError, body["event"])
			req.Equal(domain.ErrCodeBadRequest, body["code"])
			req.NotEmpty(body["message"])
		})
	}
	require.Empty(t, svc.recorded())
}

func TestWebSocket_DispatchesByEvent(t *testing.T) {
	req := require.New(t)
	conn, svc := dialSocket(t)
	defer conn.Close()

	frames := []string{
		`{"event":"identify","userId":"u1"}`,
		`{"event":"start-stream","streamId":"S1","userId":"u1"}`,
		`{"event":"stop-stream","streamId":"S1"}`,
		`{"event":"offer","streamId":"S1","payload":{"sdp":"x"}}`,
		`{"event":"chat-message","streamId":"S1","message":"hi"}`,
		`{"event":"ping"}`,
	}
	for _, f := range frames {
		req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(f)))
	}

	// the pong arrives after every earlier frame was handled
	req.Equal(domain.EventPong, readFrame(t, conn)["event"])
	req.Equal([]string{
		domain.EventIdentify,
		domain.EventStartStream,
		domain.EventEndStream,
		domain.EventOffer,
		domain.EventChatMessage,
		domain.EventPing,
	}, svc.recorded())
}

func TestWebSocket_CloseRunsDisconnect(t *testing.T) {
	req := require.New(t)
	conn, svc := dialSocket(t)

	// when
	req.NoError(conn.Close())

	// then
	select {
	case id := <-svc.disconnected:
		req.NotEmpty(id)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect handler was not called")
	}
}

func TestHTTP_Health(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(&fakeService{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func TestHTTP_ListLive(t *testing.T) {
	req := require.New(t)
	svc := &fakeService{rooms: []registry.Snapshot{
		{StreamID: "S1", BroadcasterConnID: "c1", ViewerIDs: []string{"c2", "c3"}, ViewerCount: 2},
		{StreamID: "S2", BroadcasterConnID: "c4", ViewerIDs: []string{}},
	}}
	r := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/streams/live", nil))

	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{
		"success": true,
		"data": [
			{"streamId":"S1","broadcasterId":"c1","viewerCount":2},
			{"streamId":"S2","broadcasterId":"c4","viewerCount":0}
		],
		"meta": {"count": 2}
	}`, w.Body.String())
}

func TestHTTP_Presence(t *testing.T) {
	svc := &fakeService{rooms: []registry.Snapshot{
		{StreamID: "S1", BroadcasterConnID: "c1", ViewerIDs: []string{"c2"}, ViewerCount: 1},
	}}
	r := newTestRouter(svc, nil)

	cases := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"live room", "/api/v1/streams/S1/presence", http.StatusOK},
		{"unknown room", "/api/v1/streams/S9/presence", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			req.Equal(tc.wantCode, w.Code)
			var resp response.Response
			req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			if tc.wantCode == http.StatusOK {
				req.True(resp.Success)
				data := resp.Data.(map[string]interface{})
				req.Equal("c1", data["broadcasterId"])
				req.EqualValues(1, data["viewerCount"])
				return
			}
			req.False(resp.Success)
			req.Equal(response.CodeNotFound, resp.Error.Code)
		})
	}
}

func TestHTTP_ListRecaps(t *testing.T) {
	req := require.New(t)
	svc := &fakeService{recaps: []recap.Recap{{StreamID: "S1", PeakViewers: 3, EndReason: "explicit"}}}
	r := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/streams/S1/recaps", nil))

	req.Equal(http.StatusOK, w.Code)
	var resp response.Response
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.True(resp.Success)
	req.Equal(1, resp.Meta.Count)

	// given a storage failure
	svc.recapsErr = errors.New("disk gone")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/streams/S1/recaps", nil))

	req.Equal(http.StatusInternalServerError, w.Code)
}
