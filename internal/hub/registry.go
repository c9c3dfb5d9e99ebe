package hub

import (
	"log/slog"
	"sync"
)

// Registry is the process-wide table of live websocket connections, keyed by
// group and then by connection id. For each connection it holds only the
// send side of that session's outbound channel; the session's write loop owns
// the receive side.
//
// All methods take the single exclusive lock for their whole duration. That
// is acceptable because every operation is O(1) map work plus, for Broadcast,
// non-blocking channel sends; nothing slow ever happens under the lock.
type Registry struct {
	mu sync.Mutex

	// groups maps group id -> connection id -> outbound channel handle.
	// A group key exists iff at least one connection is registered under it.
	groups map[int64]map[string]chan<- []byte

	// byConn maps connection id -> group id, enforcing that a connection is
	// registered under at most one group at a time.
	byConn map[string]int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[int64]map[string]chan<- []byte),
		byConn: make(map[string]int64),
	}
}

// Register inserts the channel handle under group/connID. If the connection
// id is already registered, its old entry is removed first, so a connection
// is never present under two groups.
func (r *Registry) Register(groupID int64, connID string, ch chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldGroup, ok := r.byConn[connID]; ok {
		r.removeLocked(oldGroup, connID)
	}

	conns, ok := r.groups[groupID]
	if !ok {
		conns = make(map[string]chan<- []byte)
		r.groups[groupID] = conns
	}
	conns[connID] = ch
	r.byConn[connID] = groupID
}

// Deregister removes the entry and prunes the group key when its last
// connection leaves. Deregistering an absent entry is a no-op: a session must
// be able to call this exactly once even if registration never completed.
func (r *Registry) Deregister(groupID int64, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(groupID, connID)
}

func (r *Registry) removeLocked(groupID int64, connID string) {
	conns, ok := r.groups[groupID]
	if !ok {
		return
	}
	if _, ok := conns[connID]; !ok {
		return
	}
	delete(conns, connID)
	delete(r.byConn, connID)
	if len(conns) == 0 {
		delete(r.groups, groupID)
	}
}

// Broadcast enqueues the frame into every channel currently registered under
// the group. Sends are non-blocking: a recipient whose buffer is full has the
// frame dropped, which is logged and otherwise ignored so one stalled client
// never delays or fails delivery to the rest of the group. An unknown group
// is a normal state, not an error.
func (r *Registry) Broadcast(groupID int64, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for connID, ch := range r.groups[groupID] {
		select {
		case ch <- frame:
		default:
			slog.Warn("Outbound buffer full, dropping frame",
				"group_id", groupID, "connection_id", connID)
		}
	}
}

// Snapshot returns the current connection count for a group. Diagnostics only.
func (r *Registry) Snapshot(groupID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[groupID])
}
