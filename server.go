package uniws

import (
	"net/http"
	"time"

	"github.com/uniws/uniws/internal/sync"
	"github.com/uniws/uniws/transport"
	wstransport "github.com/uniws/uniws/transport/websocket"
)

type ServerConfig struct {
	// Transport to upgrade connections with. Defaults to the direct
	// websocket transport with its default config.
	Transport transport.Transport

	// WriteTimeout is the default bound on each raw write, overridable
	// per upgrade. Zero means no bound.
	WriteTimeout time.Duration

	// For printing debug messages, set this to NewPrintDebugger().
	Debugger Debugger
}

// UpgradeOptions are the per-call settings of Upgrade. All fields are
// optional.
type UpgradeOptions struct {
	// Key overrides the derived registry key for this upgrade. Use this
	// when the host runtime supplies its own per-connection identity.
	Key string

	Subprotocols []string

	// Header entries to add to the handshake response, where the
	// transport controls that response.
	Header http.Header

	WriteTimeout time.Duration
}

type Upgraded struct {
	Socket Socket

	// Response is the handshake metadata when the transport produced the
	// response itself. It is nil under a deferred transport: there, the
	// handshake response is written by the host runtime.
	Response *transport.Handshake
}

// Server bridges one transport to application code. Each server owns its
// own pending store, so multiple independent servers can live in one
// process.
type Server struct {
	transport    transport.Transport
	pending      *pendingStore
	matcher      *matchEngine
	tokens       *tokenSource
	writeTimeout time.Duration
	debug        Debugger

	// bound maps live connections to their adapters. Guarded by boundMu:
	// the event loop binds deferred connections, Upgrade binds direct
	// ones from the caller's goroutine.
	boundMu sync.Mutex
	bound   map[transport.Conn]*socketAdapter

	events    chan func()
	closed    chan struct{}
	closeOnce sync.Once
}

const eventBacklog = 128

func NewServer(config *ServerConfig) *Server {
	if config == nil {
		config = new(ServerConfig)
	}

	debug := config.Debugger
	if debug == nil {
		debug = NewNoopDebugger()
	}

	t := config.Transport
	if t == nil {
		t = wstransport.NewTransport(nil)
	}

	s := &Server{
		transport:    t,
		tokens:       newTokenSource(),
		writeTimeout: config.WriteTimeout,
		debug:        debug.WithContext("server"),
		bound:        make(map[transport.Conn]*socketAdapter),
		events:       make(chan func(), eventBacklog),
		closed:       make(chan struct{}),
	}
	s.pending = newPendingStore(debug)
	s.matcher = newMatchEngine(s.pending, debug)
	liveStores.Add(s.pending)

	t.Callbacks().Set(
		func(conn transport.Conn, token, url string) {
			s.post(func() { s.handleOpen(conn, token, url) })
		},
		func(conn transport.Conn, data []byte, binary bool) {
			s.post(func() { s.handleMessage(conn, data, binary) })
		},
		func(conn transport.Conn, code int, reason string) {
			s.post(func() { s.handleClose(conn, code, reason) })
		},
		func(conn transport.Conn, err error) {
			s.post(func() { s.handleError(conn, err) })
		},
	)

	go s.run()
	return s
}

// run consumes the event channel. Raw hooks post onto it instead of
// mutating adapter state from their own (possibly re-entrant) call
// stacks, so all matching and event emission is single-threaded.
func (s *Server) run() {
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.closed:
			return
		}
	}
}

// post hands fn to the event loop. Events arriving after Close are
// dropped.
func (s *Server) post(fn func()) {
	select {
	case s.events <- fn:
	case <-s.closed:
	}
}

// Upgrade issues a WebSocket upgrade for r and returns a Socket that is
// usable immediately, whether or not the underlying connection exists yet.
func (s *Server) Upgrade(w http.ResponseWriter, r *http.Request, opts *UpgradeOptions) (*Upgraded, error) {
	if opts == nil {
		opts = new(UpgradeOptions)
	}
	select {
	case <-s.closed:
		return nil, &UpgradeRejectedError{err: ErrServerClosed}
	default:
	}

	id, err := generateSocketID()
	if err != nil {
		return nil, wrapInternalError(err)
	}
	token := s.tokens.next()

	adapter := newSocketAdapter(id, token, requestURL(r), s.post, s.debug)

	key := opts.Key
	if key == "" {
		key = token
	}
	if !s.pending.register(key, adapter) {
		return nil, &UpgradeRejectedError{err: ErrDuplicateKey}
	}

	writeTimeout := opts.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = s.writeTimeout
	}

	result, err := s.transport.Upgrade(w, r, &transport.UpgradeOptions{
		Token:        token,
		Subprotocols: opts.Subprotocols,
		Header:       opts.Header,
		WriteTimeout: writeTimeout,
	})
	if err != nil {
		s.pending.remove(adapter)
		return nil, &UpgradeRejectedError{err: err}
	}

	if result != nil && result.Conn != nil {
		// Direct transport: the connection is live and may already be
		// delivering events. Bind before returning so the loop can route
		// them; no handlers are registered at this point, so the open
		// event reaches the application via late-handler catch-up.
		conn := result.Conn
		if s.pending.remove(adapter) {
			s.setBound(conn, adapter)
			adapter.bind(conn)
		}
		return &Upgraded{Socket: adapter, Response: result.Handshake}, nil
	}

	// Deferred transport: the socket arrives later through the
	// multiplexer's hooks.
	return &Upgraded{Socket: adapter}, nil
}

func (s *Server) lookupBound(conn transport.Conn) (*socketAdapter, bool) {
	s.boundMu.Lock()
	defer s.boundMu.Unlock()
	adapter, ok := s.bound[conn]
	return adapter, ok
}

func (s *Server) setBound(conn transport.Conn, adapter *socketAdapter) {
	s.boundMu.Lock()
	defer s.boundMu.Unlock()
	s.bound[conn] = adapter
}

func (s *Server) removeBound(conn transport.Conn) (*socketAdapter, bool) {
	s.boundMu.Lock()
	defer s.boundMu.Unlock()
	adapter, ok := s.bound[conn]
	if ok {
		delete(s.bound, conn)
	}
	return adapter, ok
}

func (s *Server) drainBound() []*socketAdapter {
	s.boundMu.Lock()
	defer s.boundMu.Unlock()
	adapters := make([]*socketAdapter, 0, len(s.bound))
	for conn, adapter := range s.bound {
		delete(s.bound, conn)
		adapters = append(adapters, adapter)
	}
	return adapters
}

func (s *Server) handleOpen(conn transport.Conn, token, url string) {
	if _, ok := s.lookupBound(conn); ok {
		return
	}
	adapter, ok := s.matcher.resolve(token, url)
	if !ok {
		// The adapter may not exist yet or may already be gone; if it is
		// matched by a later hook it still synthesizes its own open.
		s.debug.Log("open event unmatched, dropped")
		return
	}
	s.setBound(conn, adapter)
	adapter.bind(conn)
}

func (s *Server) handleMessage(conn transport.Conn, data []byte, binary bool) {
	adapter, ok := s.lookupBound(conn)
	if !ok {
		// The message beat its own open event; a match here still binds.
		adapter, ok = s.matcher.resolve("", "")
		if !ok {
			s.debug.Log("message event unmatched, dropped")
			return
		}
		s.setBound(conn, adapter)
		adapter.bind(conn)
	}
	adapter.handleMessage(data, binary)
}

func (s *Server) handleClose(conn transport.Conn, code int, reason string) {
	adapter, ok := s.removeBound(conn)
	if ok {
		adapter.handleClose(code, reason)
		return
	}
	adapter, ok = s.matcher.resolve("", "")
	if !ok {
		s.debug.Log("close event unmatched, dropped")
		return
	}
	// Never bound: the connection died before or during binding. The
	// adapter goes straight to closed with a synthetic close.
	adapter.handleClose(code, reason)
}

func (s *Server) handleError(conn transport.Conn, err error) {
	adapter, ok := s.lookupBound(conn)
	if ok {
		adapter.handleError(err)
		return
	}
	adapter, ok = s.matcher.resolve("", "")
	if !ok {
		s.debug.Log("error event unmatched, dropped", err)
		return
	}
	// The connection errored before the adapter could bind. Surface the
	// error, then a synthetic close.
	adapter.handleError(err)
	adapter.handleClose(transport.CodeAbnormalClosure, "")
}

// Close tears the server down: every still-pending adapter is forced into
// a closed state, every bound connection is closed, and the event loop
// stops. Safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		liveStores.Remove(s.pending)

		done := make(chan struct{})
		s.events <- func() {
			for _, adapter := range s.pending.drainAll() {
				adapter.forceClose(transport.CodeGoingAway, "server going away")
			}
			for _, adapter := range s.drainBound() {
				adapter.forceClose(transport.CodeGoingAway, "server going away")
			}
			close(done)
		}
		<-done
		close(s.closed)
	})
	return nil
}

func requestURL(r *http.Request) string {
	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
