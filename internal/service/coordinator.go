package service

import (
	"context"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/kafka"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/recap"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/repository"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
)

const defaultChatMaxLength = 500

// Options wires the coordinator. Producer, PubSub and Recaps are optional.
type Options struct {
	Registry      *registry.Registry
	Emitter       Emitter
	Streams       repository.StreamRepository
	Users         repository.UserRepository
	Ledger        repository.Ledger
	Producer      kafka.StreamEventProducer
	PubSub        pubsub.PubSub
	Recaps        *recap.Tracker
	InstanceID    string
	ChatMaxLength int
}

type coordinator struct {
	registry      *registry.Registry
	emitter       Emitter
	streams       repository.StreamRepository
	users         repository.UserRepository
	ledger        repository.Ledger
	producer      kafka.StreamEventProducer
	pubsub        pubsub.PubSub
	recaps        *recap.Tracker
	instanceID    string
	chatMaxLength int

	cancel context.CancelFunc
}

// NewCoordinatorService creates a new CoordinatorService instance.
func NewCoordinatorService(opts Options) CoordinatorService {
	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	maxLen := opts.ChatMaxLength
	if maxLen <= 0 {
		maxLen = defaultChatMaxLength
	}
	return &coordinator{
		registry:      reg,
		emitter:       opts.Emitter,
		streams:       opts.Streams,
		users:         opts.Users,
		ledger:        opts.Ledger,
		producer:      opts.Producer,
		pubsub:        opts.PubSub,
		recaps:        opts.Recaps,
		instanceID:    opts.InstanceID,
		chatMaxLength: maxLen,
	}
}

// identify records a client-declared user on the session and the user index.
func (s *coordinator) identify(c *hub.Client, userID, username string, role domain.Role) {
	if userID == "" {
		return
	}
	c.Session.Identify(userID, username, role)
	s.registry.BindUser(c.ID, userID)
}

func (s *coordinator) HandleIdentify(ctx context.Context, c *hub.Client, msg *domain.IdentifyMessage) error {
	s.identify(c, msg.UserID, msg.Username, domain.Role(msg.Role))
	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldUserID, msg.UserID).Msg("connection identified")

	return s.emitter.SendToClient(c.ID, &domain.IdentifiedMessage{
		Event:        domain.EventIdentified,
		UserID:       msg.UserID,
		ConnectionID: c.ID,
	})
}

func (s *coordinator) HandlePing(ctx context.Context, c *hub.Client) error {
	return s.emitter.SendToClient(c.ID, &domain.PongMessage{Event: domain.EventPong})
}

func (s *coordinator) LiveStreams() []registry.Snapshot {
	return s.registry.Rooms()
}

func (s *coordinator) Presence(streamID string) (registry.Snapshot, bool) {
	return s.registry.FindRoom(streamID)
}

func (s *coordinator) Recaps(ctx context.Context, streamID string) ([]recap.Recap, error) {
	if s.recaps == nil {
		return []recap.Recap{}, nil
	}
	return s.recaps.List(ctx, streamID)
}

func (s *coordinator) streamError(c *hub.Client, streamID, code, message string) error {
	return s.emitter.SendToClient(c.ID, domain.NewStreamError(streamID, code, message))
}

func (s *coordinator) tipError(c *hub.Client, streamID, code, message string) error {
	return s.emitter.SendToClient(c.ID, domain.NewTipError(streamID, code, message))
}
