// Package transport defines the raw socket layer the uniws core consumes.
//
// A Transport is selected once, at server construction. The core never
// branches on which implementation is active: direct transports (see the
// websocket subpackage) hand back a connected Conn from Upgrade itself,
// deferred transports (see the deferred subpackage) acknowledge the upgrade
// with a nil Conn and deliver the connection later through the Callbacks.
package transport

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Close codes forwarded between the core and the underlying socket.
// Values are the RFC 6455 status codes.
const (
	CodeNormalClosure   = 1000
	CodeGoingAway       = 1001
	CodeAbnormalClosure = 1006
)

// ErrUpgradeRejected is returned (possibly wrapped) by Upgrade when the
// transport refused the handshake outright.
var ErrUpgradeRejected = errors.New("transport: upgrade rejected")

type ConnState int

const (
	ConnConnecting ConnState = iota
	ConnOpen
	ConnClosing
	ConnClosed
)

func (s ConnState) String() string {
	switch s {
	case ConnConnecting:
		return "connecting"
	case ConnOpen:
		return "open"
	case ConnClosing:
		return "closing"
	case ConnClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Conn is the raw socket surface consumed by the core: a send primitive, a
// close primitive and a state query. Everything else (framing, heartbeats,
// compression) is the transport's concern.
type Conn interface {
	// Send writes one message. binary selects the frame type.
	Send(ctx context.Context, data []byte, binary bool) error

	// Close performs the closing handshake. Calling Close on an already
	// closed Conn must be a no-op.
	Close(code int, reason string) error

	State() ConnState

	// Protocol returns the negotiated subprotocol, or "".
	Protocol() string
}

// UpgradeOptions carries the per-upgrade settings the coordinator hands to
// the transport.
type UpgradeOptions struct {
	// Token is the per-connection token attached by the coordinator.
	// Transports that can echo it back in OnOpen make token matching
	// deterministic; transports that cannot simply ignore it.
	Token string

	Subprotocols []string

	// Header entries are added to the handshake response where the
	// transport controls that response.
	Header http.Header

	// WriteTimeout bounds each raw write while waiting for the underlying
	// socket's backpressure signal. Zero means no bound.
	WriteTimeout time.Duration
}

// Handshake is the response metadata a direct transport produced while
// completing the upgrade. Deferred transports produce none: the handshake
// response is written by the host runtime itself.
type Handshake struct {
	StatusCode  int
	Subprotocol string
	Header      http.Header
}

// Result of an upgrade attempt that was not rejected. Direct transports
// fill both fields; deferred transports leave both nil.
type Result struct {
	Conn      Conn
	Handshake *Handshake
}

type Transport interface {
	Name() string

	// Upgrade performs (or begins) the protocol handshake for r.
	Upgrade(w http.ResponseWriter, r *http.Request, opts *UpgradeOptions) (*Result, error)

	// Callbacks the transport delivers raw events through.
	Callbacks() *Callbacks
}
