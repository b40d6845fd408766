package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/repository"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/database"
)

const broadcastTarget = "*"

type frame struct {
	To    string
	Event string
	Body  map[string]interface{}
}

// recordingEmitter captures every outbound frame in emission order.
type recordingEmitter struct {
	mu     sync.Mutex
	frames []frame
}

func (e *recordingEmitter) record(to string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	event, _ := body["event"].(string)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = append(e.frames, frame{To: to, Event: event, Body: body})
	return nil
}

func (e *recordingEmitter) SendToClient(clientID string, message interface{}) error {
	return e.record(clientID, message)
}

func (e *recordingEmitter) SendToClients(clientIDs []string, message interface{}) error {
	for _, id := range clientIDs {
		if err := e.record(id, message); err != nil {
			return err
		}
	}
	return nil
}

func (e *recordingEmitter) BroadcastAll(message interface{}) error {
	return e.record(broadcastTarget, message)
}

func (e *recordingEmitter) to(connID string) []frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []frame
	for _, f := range e.frames {
		if f.To == connID {
			out = append(out, f)
		}
	}
	return out
}

func (e *recordingEmitter) events(connID string) []string {
	var out []string
	for _, f := range e.to(connID) {
		out = append(out, f.Event)
	}
	return out
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = nil
}

const (
	streamID  = "S1"
	creatorID = "u-creator"
	viewerID  = "u-viewer"
	poorID    = "u-poor"
)

type testEnv struct {
	svc      *coordinator
	emitter  *recordingEmitter
	registry *registry.Registry
	db       *gorm.DB
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))
	t.Cleanup(func() { _ = database.Close(db) })

	for _, v := range []interface{}{
		&domain.UserModel{ID: creatorID, Username: "carol", Role: string(domain.RoleCreator)},
		&domain.UserModel{ID: viewerID, Username: "victor", Role: string(domain.RoleViewer), Wallet: 100},
		&domain.UserModel{ID: poorID, Username: "pat", Role: string(domain.RoleViewer), Wallet: 5},
		&domain.StreamModel{ID: streamID, CreatorID: creatorID, Title: "live coding"},
	} {
		require.NoError(t, db.Create(v).Error)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	reg := registry.New()
	em := &recordingEmitter{}

	svc := NewCoordinatorService(Options{
		Registry:   reg,
		Emitter:    em,
		Streams:    repository.NewGormStreamRepository(db),
		Users:      repository.NewGormUserRepository(db),
		Ledger:     repository.NewGormLedger(db),
		InstanceID: "test-instance",
	}).(*coordinator)

	return &testEnv{svc: svc, emitter: em, registry: reg, db: db}
}

func newClient(id string) *hub.Client {
	return hub.NewClient(id, nil, nil, config.WebSocketConfig{})
}

func (e *testEnv) isLive(t *testing.T) bool {
	t.Helper()
	var m domain.StreamModel
	require.NoError(t, e.db.First(&m, "id = ?", streamID).Error)
	return m.IsLive
}

func (e *testEnv) wallet(t *testing.T, userID string) int64 {
	t.Helper()
	var m domain.UserModel
	require.NoError(t, e.db.First(&m, "id = ?", userID).Error)
	return m.Wallet
}
