// Package recap keeps running totals for each live stream and archives
// them to object storage when the stream ends.
package recap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/storage"
)

const keyPrefix = "recaps"

// Recap summarises one broadcast session.
type Recap struct {
	StreamID        string    `json:"stream_id"`
	BroadcasterID   string    `json:"broadcaster_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	EndReason       string    `json:"end_reason"`
	PeakViewers     int       `json:"peak_viewers"`
	TotalJoins      int       `json:"total_joins"`
	ChatMessages    int       `json:"chat_messages"`
	Tips            int       `json:"tips"`
	TipTotal        int64     `json:"tip_total"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	active map[string]*Recap
	store  storage.Storage
	now    func() time.Time
}

func NewTracker(store storage.Storage) *Tracker {
	return &Tracker{
		active: make(map[string]*Recap),
		store:  store,
		now:    time.Now,
	}
}

// Start opens a session. A session that is already open is kept, so a
// broadcaster reconnect does not reset the totals.
func (t *Tracker) Start(streamID, broadcasterID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.active[streamID]; ok {
		r.BroadcasterID = broadcasterID
		return
	}
	t.active[streamID] = &Recap{
		StreamID:      streamID,
		BroadcasterID: broadcasterID,
		StartedAt:     t.now().UTC(),
	}
}

// ObserveViewers records the current count; joined marks a new viewer.
func (t *Tracker) ObserveViewers(streamID string, count int, joined bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.active[streamID]
	if !ok {
		return
	}
	if count > r.PeakViewers {
		r.PeakViewers = count
	}
	if joined {
		r.TotalJoins++
	}
}

func (t *Tracker) RecordChat(streamID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.active[streamID]; ok {
		r.ChatMessages++
	}
}

func (t *Tracker) RecordTip(streamID string, amount int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.active[streamID]; ok {
		r.Tips++
		r.TipTotal += amount
	}
}

// Finish closes the session and writes it to storage. It returns nil, nil
// when no session was open.
func (t *Tracker) Finish(ctx context.Context, streamID, reason string) (*Recap, error) {
	t.mu.Lock()
	r, ok := t.active[streamID]
	delete(t.active, streamID)
	t.mu.Unlock()

	if !ok {
		return nil, nil
	}

	r.EndedAt = t.now().UTC()
	r.EndReason = reason
	r.DurationSeconds = int64(r.EndedAt.Sub(r.StartedAt).Seconds())

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recap: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%d.json", keyPrefix, streamID, r.EndedAt.UnixNano())
	if err := t.store.Write(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, fmt.Errorf("failed to write recap: %w", err)
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldStreamID, streamID).
		Str("key", key).
		Int("peak_viewers", r.PeakViewers).
		Int64("tip_total", r.TipTotal).
		Msg("stream recap stored")
	return r, nil
}

// List returns stored recaps for streamID, oldest first.
func (t *Tracker) List(ctx context.Context, streamID string) ([]Recap, error) {
	files, err := t.store.List(ctx, fmt.Sprintf("%s/%s/", keyPrefix, streamID))
	if err != nil {
		return nil, fmt.Errorf("failed to list recaps: %w", err)
	}

	recaps := make([]Recap, 0, len(files))
	for _, f := range files {
		r, err := t.read(ctx, f.Key)
		if err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str("key", f.Key).Msg("skipping unreadable recap")
			continue
		}
		recaps = append(recaps, *r)
	}
	return recaps, nil
}

func (t *Tracker) read(ctx context.Context, key string) (*Recap, error) {
	rc, err := t.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var r Recap
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
