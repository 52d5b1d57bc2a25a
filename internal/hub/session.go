package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrSessionClosed is returned when enqueueing to a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrSendBufferFull is returned when the client cannot keep up with
	// its outbound message rate.
	ErrSendBufferFull = errors.New("session send buffer full")

	// ErrStaleGeneration is returned when a dispatcher presents a token
	// from a replaced subscription.
	ErrStaleGeneration = errors.New("stale subscription generation")
)

// Session is the server-side state bound to one live client connection:
// identity, outbound delivery channel, and the current subscription.
//
// Exactly one dispatcher may be active per session. The generation counter
// enforces the swap: every subscribe or unsubscribe bumps it under mu, and
// a dispatcher verifies its own generation before each send, so a replaced
// dispatcher can never deliver after the replacement begins.
type Session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	joined time.Time

	mu        sync.Mutex
	closed    bool
	gen       uint64
	cancel    context.CancelFunc
	source    string
	frequency int
}

func newSession(id string, conn *websocket.Conn, sendBuf int) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuf),
		joined: time.Now(),
	}
}

// Joined returns the time the session was created.
func (s *Session) Joined() time.Time { return s.joined }

// ID returns the identifier assigned at connect time.
func (s *Session) ID() string { return s.id }

// Conn returns the underlying websocket connection. Reading from it is the
// protocol handler's job; writes go through Enqueue and the write pump.
func (s *Session) Conn() *websocket.Conn { return s.conn }

// Enqueue delivers one framed message to the session's outbound channel
// without blocking. A full buffer counts as a dead peer: callers treat the
// error as a disconnect.
func (s *Session) Enqueue(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// EnqueueForGeneration is Enqueue gated on the subscription generation.
// The check and the channel send happen under one lock acquisition, so a
// dispatcher holding a stale token cannot slip a frame in after its
// replacement has started.
func (s *Session) EnqueueForGeneration(token uint64, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.gen != token {
		return ErrStaleGeneration
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// BeginSubscription replaces any active subscription with a new one and
// returns the dispatcher context plus the generation token the dispatcher
// must present on every send.
func (s *Session) BeginSubscription(parent context.Context, source string, frequency int) (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, 0, ErrSessionClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.source = source
	s.frequency = frequency
	return ctx, s.gen, nil
}

// EndSubscription cancels the active dispatcher, if any, and returns to
// the idle state. Calling it while idle is a no-op.
func (s *Session) EndSubscription() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSubscriptionLocked()
}

func (s *Session) endSubscriptionLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.source = ""
	s.frequency = 0
}

// Generation returns the current subscription generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Subscription reports the active subscription, if any.
func (s *Session) Subscription() (source string, frequency int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.frequency, s.cancel != nil
}

// Close tears the session down: cancels the active dispatcher, closes the
// outbound channel, and closes the connection. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.endSubscriptionLocked()
	close(s.send)
	s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// WritePump drains the outbound channel onto the connection and keeps the
// peer alive with periodic pings. Runs in its own goroutine per session
// and exits when the channel closes or a write fails.
func (s *Session) WritePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
