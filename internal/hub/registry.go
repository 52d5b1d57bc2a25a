package hub

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Registry tracks all live client sessions. It is mutated concurrently by
// the protocol handler (connects, disconnects) and the stats broadcaster
// (dead-peer cleanup), so every operation takes the registry lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	nextID   uint64
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

// NewSession creates a session with a fresh sequential identifier. The
// session is not yet visible to Snapshot: callers enqueue any greeting
// frames first, then Register it. That keeps the greeting ahead of every
// broadcast in the session's FIFO buffer.
func (r *Registry) NewSession(conn *websocket.Conn, sendBuf int) *Session {
	id := fmt.Sprintf("client_%d", atomic.AddUint64(&r.nextID, 1))
	return newSession(id, conn, sendBuf)
}

// Register makes the session visible to Snapshot and Count. Returns the
// live-session count after the add.
func (r *Registry) Register(s *Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
	return len(r.sessions)
}

// Remove takes a session out of the registry. Removing a session that is
// not present is a no-op.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time view of the live sessions. Sessions
// removed immediately after the snapshot simply fail their sends.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every session and empties the registry. Used on
// process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[*Session]struct{})
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
