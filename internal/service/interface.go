package service

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/recap"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
)

// Emitter delivers outbound frames to sockets on this instance.
type Emitter interface {
	SendToClient(clientID string, message interface{}) error
	SendToClients(clientIDs []string, message interface{}) error
	BroadcastAll(message interface{}) error
}

// CoordinatorService handles every socket event. Handler errors are only
// returned for frames that could not be emitted; client-facing failures are
// reported to the client as stream-error or tip-error.
type CoordinatorService interface {
	HandleIdentify(ctx context.Context, c *hub.Client, msg *domain.IdentifyMessage) error
	HandleStartStream(ctx context.Context, c *hub.Client, msg *domain.StartStreamMessage) error
	HandleJoinStream(ctx context.Context, c *hub.Client, msg *domain.JoinStreamMessage) error
	HandleLeaveStream(ctx context.Context, c *hub.Client, msg *domain.LeaveStreamMessage) error
	HandleEndStream(ctx context.Context, c *hub.Client, msg *domain.EndStreamMessage) error

	// HandleSignal relays an offer, answer or ICE candidate between the
	// broadcaster and one viewer of the same room.
	HandleSignal(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error

	HandleChat(ctx context.Context, c *hub.Client, msg *domain.ChatMessage) error
	HandleTip(ctx context.Context, c *hub.Client, msg *domain.TipMessage) error
	HandlePing(ctx context.Context, c *hub.Client) error

	// HandleDisconnect tears down every room membership of the connection.
	HandleDisconnect(ctx context.Context, c *hub.Client) error

	LiveStreams() []registry.Snapshot
	Presence(streamID string) (registry.Snapshot, bool)
	Recaps(ctx context.Context, streamID string) ([]recap.Recap, error)

	// Start starts the cross-instance status relay.
	Start(ctx context.Context) error

	// Stop stops background goroutines.
	Stop() error
}
