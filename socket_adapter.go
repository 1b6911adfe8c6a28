package uniws

import (
	"context"

	"github.com/uniws/uniws/internal/sync"
	"github.com/uniws/uniws/transport"
)

// socketAdapter implements Socket. It presents a stable send/close/listener
// surface immediately, independent of whether the underlying connection
// exists yet. Binding attaches the real connection, replays the deferred
// operations in order and emits the synthetic open event.
//
// forceClose and the handle* methods run only on the owning server's event
// loop goroutine. bind additionally runs from the upgrade call when the
// transport hands back a live connection; all state is guarded by mu.
type socketAdapter struct {
	id    string
	token string
	url   string

	// schedule posts fn onto the owning server's event loop. All event
	// emission goes through there, never through the caller's stack.
	schedule func(fn func())
	debug    Debugger

	mu             sync.Mutex
	conn           transport.Conn
	queue          opQueue
	closeRequested bool
	openEmitted    bool
	closeEmitted   bool

	openHandlers    *handlerStore[OpenFunc]
	messageHandlers *handlerStore[MessageFunc]
	closeHandlers   *handlerStore[CloseFunc]
	errorHandlers   *handlerStore[ErrorFunc]
}

func newSocketAdapter(id, token, url string, schedule func(func()), debug Debugger) *socketAdapter {
	return &socketAdapter{
		id:              id,
		token:           token,
		url:             url,
		schedule:        schedule,
		debug:           debug.WithContext("socket `" + id + "`"),
		openHandlers:    newHandlerStore[OpenFunc](),
		messageHandlers: newHandlerStore[MessageFunc](),
		closeHandlers:   newHandlerStore[CloseFunc](),
		errorHandlers:   newHandlerStore[ErrorFunc](),
	}
}

func (s *socketAdapter) ID() string { return s.id }

func (s *socketAdapter) URL() string { return s.url }

func (s *socketAdapter) Protocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ""
	}
	return s.conn.Protocol()
}

func (s *socketAdapter) ReadyState() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closeEmitted:
		return ReadyStateClosed
	case s.conn == nil:
		if s.closeRequested {
			return ReadyStateClosing
		}
		return ReadyStateConnecting
	default:
		switch s.conn.State() {
		case transport.ConnOpen:
			return ReadyStateOpen
		case transport.ConnClosing:
			return ReadyStateClosing
		case transport.ConnClosed:
			return ReadyStateClosed
		default:
			return ReadyStateConnecting
		}
	}
}

func (s *socketAdapter) isBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *socketAdapter) Send(data []byte) { s.send(data, true) }

func (s *socketAdapter) SendText(data string) { s.send([]byte(data), false) }

func (s *socketAdapter) send(data []byte, binary bool) {
	s.mu.Lock()
	if s.closeRequested || s.closeEmitted {
		s.mu.Unlock()
		s.debug.Log("send after close dropped")
		return
	}
	if s.conn == nil {
		s.queue.add(func(conn transport.Conn) {
			s.write(conn, data, binary)
		})
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.mu.Unlock()
	s.write(conn, data, binary)
}

func (s *socketAdapter) write(conn transport.Conn, data []byte, binary bool) {
	err := conn.Send(context.Background(), data, binary)
	if err != nil {
		s.debug.Log("write failed", err)
		s.schedule(func() {
			s.handleError(err)
		})
	}
}

func (s *socketAdapter) Close(code int, reason string) {
	if code == 0 {
		code = transport.CodeNormalClosure
	}

	s.mu.Lock()
	if s.closeRequested {
		s.mu.Unlock()
		return
	}
	s.closeRequested = true
	if s.conn == nil {
		s.queue.add(func(conn transport.Conn) {
			conn.Close(code, reason)
		})
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.mu.Unlock()
	conn.Close(code, reason)
}

// bind attaches the real connection: deferred operations are replayed in
// the order they were issued, then the synthetic open event is emitted.
// At-most-once: a second bind is ignored. When a close was requested while
// unbound, the replayed ops already close the connection and no open is
// emitted.
func (s *socketAdapter) bind(conn transport.Conn) {
	s.mu.Lock()
	if s.conn != nil || s.closeEmitted {
		s.mu.Unlock()
		return
	}
	s.conn = conn
	ops := s.queue.drain()
	closeRequested := s.closeRequested
	s.mu.Unlock()

	s.debug.Log("bound", "replaying ops", len(ops))
	for _, op := range ops {
		op(conn)
	}
	if closeRequested {
		return
	}
	s.emitOpen()
}

// forceClose tears the adapter down regardless of binding state. Used when
// the owning server shuts down with the adapter still pending, and when a
// freshly bound connection turns out to be dead.
func (s *socketAdapter) forceClose(code int, reason string) {
	s.mu.Lock()
	s.closeRequested = true
	conn := s.conn
	s.queue.discard()
	s.mu.Unlock()

	if conn != nil {
		conn.Close(code, reason)
	}
	s.handleClose(code, reason)
}

func (s *socketAdapter) emitOpen() {
	s.mu.Lock()
	if s.openEmitted || s.closeEmitted {
		s.mu.Unlock()
		return
	}
	s.openEmitted = true
	handlers := s.openHandlers.getAll()
	s.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

func (s *socketAdapter) handleMessage(data []byte, binary bool) {
	s.mu.Lock()
	emitted := s.closeEmitted
	s.mu.Unlock()
	if emitted {
		return
	}
	for _, handler := range s.messageHandlers.getAll() {
		handler(data, binary)
	}
}

func (s *socketAdapter) handleClose(code int, reason string) {
	s.mu.Lock()
	if s.closeEmitted {
		s.mu.Unlock()
		return
	}
	s.closeEmitted = true
	s.closeRequested = true
	s.queue.discard()
	handlers := s.closeHandlers.getAll()
	s.mu.Unlock()

	s.debug.Log("closed", code, reason)
	for _, handler := range handlers {
		handler(code, reason)
	}
}

func (s *socketAdapter) handleError(err error) {
	s.mu.Lock()
	emitted := s.closeEmitted
	s.mu.Unlock()
	if emitted {
		return
	}
	for _, handler := range s.errorHandlers.getAll() {
		handler(err)
	}
}
