// Package registry holds the process-local map of live rooms: which
// connection broadcasts a stream and which connections watch it.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
)

var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrBroadcasterCannotView  = errors.New("broadcaster cannot view its own room")
	ErrStaleOwnership         = errors.New("connection is not the current broadcaster")
	ErrBroadcasterUnavailable = errors.New("broadcaster has no active connection")
)

// Snapshot is a copy of one room taken under the registry lock.
type Snapshot struct {
	StreamID          string   `json:"streamId"`
	BroadcasterConnID string   `json:"broadcasterId"`
	BroadcasterUserID string   `json:"broadcasterUserId,omitempty"`
	ViewerIDs         []string `json:"viewerIds"`
	ViewerCount       int      `json:"viewerCount"`
}

// Members returns the broadcaster followed by every viewer.
func (s Snapshot) Members() []string {
	members := make([]string, 0, len(s.ViewerIDs)+1)
	if s.BroadcasterConnID != "" {
		members = append(members, s.BroadcasterConnID)
	}
	return append(members, s.ViewerIDs...)
}

// HasViewer reports whether connID is in the viewer set.
func (s Snapshot) HasViewer(connID string) bool {
	for _, id := range s.ViewerIDs {
		if id == connID {
			return true
		}
	}
	return false
}

// IsMember reports whether connID broadcasts or views the room.
func (s Snapshot) IsMember(connID string) bool {
	return connID == s.BroadcasterConnID || s.HasViewer(connID)
}

type room struct {
	streamID        string
	broadcasterConn string
	broadcasterUser string
	viewers         map[string]struct{}
}

func (r *room) snapshot() Snapshot {
	viewers := make([]string, 0, len(r.viewers))
	for id := range r.viewers {
		viewers = append(viewers, id)
	}
	sort.Strings(viewers)
	return Snapshot{
		StreamID:          r.streamID,
		BroadcasterConnID: r.broadcasterConn,
		BroadcasterUserID: r.broadcasterUser,
		ViewerIDs:         viewers,
		ViewerCount:       len(viewers),
	}
}

// Registry is safe for concurrent use. The lock covers map mutation only.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]*room
	users        map[string]string              // userID -> connID
	conns        map[string]string              // connID -> userID
	viewing      map[string]map[string]struct{} // connID -> streamIDs
	broadcasting map[string]map[string]struct{} // connID -> streamIDs
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		rooms:        make(map[string]*room),
		users:        make(map[string]string),
		conns:        make(map[string]string),
		viewing:      make(map[string]map[string]struct{}),
		broadcasting: make(map[string]map[string]struct{}),
	}
}

// CreateRoom installs connID as the broadcaster of streamID. When the room
// already exists the broadcaster is replaced and the previous connection id
// is returned. demoted reports that connID was a viewer of the room and has
// left the viewer set.
func (r *Registry) CreateRoom(streamID, connID, userID string) (snap Snapshot, replaced bool, prevConnID string, demoted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, prevConnID, replaced, demoted := r.createLocked(streamID, connID, userID)
	return rm.snapshot(), replaced, prevConnID, demoted
}

func (r *Registry) createLocked(streamID, connID, userID string) (*room, string, bool, bool) {
	rm, exists := r.rooms[streamID]
	prev := ""
	if exists {
		prev = rm.broadcasterConn
		if prev != connID {
			removeFromSet(r.broadcasting, prev, streamID)
		}
		rm.broadcasterConn = connID
		rm.broadcasterUser = userID
	} else {
		rm = &room{
			streamID:        streamID,
			broadcasterConn: connID,
			broadcasterUser: userID,
			viewers:         make(map[string]struct{}),
		}
		r.rooms[streamID] = rm
	}

	_, demoted := rm.viewers[connID]
	if demoted {
		delete(rm.viewers, connID)
		removeFromSet(r.viewing, connID, streamID)
	}
	addToSet(r.broadcasting, connID, streamID)

	if userID != "" {
		r.bindLocked(connID, userID)
	}
	return rm, prev, exists, demoted
}

// AddViewer adds connID to the viewer set. added is false when it was
// already a viewer.
func (r *Registry) AddViewer(streamID, connID string) (snap Snapshot, added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[streamID]
	if !ok {
		return Snapshot{}, false, ErrRoomNotFound
	}
	if rm.broadcasterConn == connID {
		return rm.snapshot(), false, ErrBroadcasterCannotView
	}
	if _, ok := rm.viewers[connID]; !ok {
		rm.viewers[connID] = struct{}{}
		addToSet(r.viewing, connID, streamID)
		added = true
	}
	return rm.snapshot(), added, nil
}

// RemoveViewer drops connID from the viewer set. exists reports whether the
// room is present at all.
func (r *Registry) RemoveViewer(streamID, connID string) (snap Snapshot, removed bool, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[streamID]
	if !ok {
		removeFromSet(r.viewing, connID, streamID)
		return Snapshot{}, false, false
	}
	if _, ok := rm.viewers[connID]; ok {
		delete(rm.viewers, connID)
		removeFromSet(r.viewing, connID, streamID)
		removed = true
	}
	return rm.snapshot(), removed, true
}

// RemoveBroadcaster deletes the room if connID still owns it and returns the
// final snapshot, viewers included.
func (r *Registry) RemoveBroadcaster(streamID, connID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[streamID]
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	if rm.broadcasterConn != connID {
		return rm.snapshot(), ErrStaleOwnership
	}

	snap := rm.snapshot()
	for viewer := range rm.viewers {
		removeFromSet(r.viewing, viewer, streamID)
	}
	removeFromSet(r.broadcasting, connID, streamID)
	delete(r.rooms, streamID)
	return snap, nil
}

// FindRoom returns the room for streamID.
func (r *Registry) FindRoom(streamID string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[streamID]
	if !ok {
		return Snapshot{}, false
	}
	return rm.snapshot(), true
}

// ReconcileFromPersisted rebuilds a room for a stream that is durably live
// using the broadcaster user's current connection. An existing room is
// returned unchanged.
func (r *Registry) ReconcileFromPersisted(streamID, broadcasterUserID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[streamID]; ok {
		return rm.snapshot(), nil
	}
	connID, ok := r.users[broadcasterUserID]
	if !ok || broadcasterUserID == "" {
		return Snapshot{}, ErrBroadcasterUnavailable
	}
	rm, _, _, _ := r.createLocked(streamID, connID, broadcasterUserID)
	return rm.snapshot(), nil
}

// BindUser points userID at connID in the user index.
func (r *Registry) BindUser(connID, userID string) {
	if connID == "" || userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindLocked(connID, userID)
}

func (r *Registry) bindLocked(connID, userID string) {
	if old, ok := r.conns[connID]; ok && old != userID && r.users[old] == connID {
		delete(r.users, old)
	}
	r.conns[connID] = userID
	r.users[userID] = connID
}

// UnbindConnection forgets connID. The user entry is only cleared while it
// still points at this connection.
func (r *Registry) UnbindConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID, ok := r.conns[connID]; ok {
		if r.users[userID] == connID {
			delete(r.users, userID)
		}
		delete(r.conns, connID)
	}
	delete(r.viewing, connID)
	delete(r.broadcasting, connID)
}

// ConnectionForUser returns the connection currently bound to userID.
func (r *Registry) ConnectionForUser(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connID, ok := r.users[userID]
	return connID, ok
}

// UserForConnection returns the user bound to connID.
func (r *Registry) UserForConnection(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.conns[connID]
	return userID, ok
}

// Memberships lists the streams connID broadcasts and views, sorted.
func (r *Registry) Memberships(connID string) (broadcasting, viewing []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return sortedKeys(r.broadcasting[connID]), sortedKeys(r.viewing[connID])
}

// Rooms returns a snapshot of every room ordered by stream id.
func (r *Registry) Rooms() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreamID < out[j].StreamID })
	return out
}

func addToSet(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[member] = struct{}{}
}

func removeFromSet(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, member)
	if len(set) == 0 {
		delete(m, key)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := lo.Keys(set)
	sort.Strings(out)
	return out
}
