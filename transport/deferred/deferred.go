// Package deferred implements the deferred transport variant: Upgrade only
// accepts or rejects the handshake, and the actual socket arrives later
// through a shared connection multiplexer that dispatches the four named
// hooks (open, message, close, error).
//
// This is the shape of host runtimes that own the upgrade response
// themselves and hand sockets back out of band. The host pushes raw
// sockets and events into the Multiplexer via the Deliver methods; the
// Multiplexer forwards them through the transport Callbacks.
package deferred

import (
	"net/http"

	"github.com/uniws/uniws/transport"
)

// AcceptFunc decides whether an upgrade request is accepted. A nil
// AcceptFunc accepts everything.
type AcceptFunc func(r *http.Request, opts *transport.UpgradeOptions) bool

type Multiplexer struct {
	accept    AcceptFunc
	callbacks *transport.Callbacks
}

func NewMultiplexer(accept AcceptFunc) *Multiplexer {
	if accept == nil {
		accept = func(r *http.Request, opts *transport.UpgradeOptions) bool { return true }
	}
	return &Multiplexer{
		accept:    accept,
		callbacks: transport.NewCallbacks(),
	}
}

func (m *Multiplexer) Name() string { return "deferred" }

func (m *Multiplexer) Callbacks() *transport.Callbacks { return m.callbacks }

// Upgrade never produces a Conn: on success the Result is empty and the
// connection is delivered later through DeliverOpen.
func (m *Multiplexer) Upgrade(w http.ResponseWriter, r *http.Request, opts *transport.UpgradeOptions) (*transport.Result, error) {
	if !m.accept(r, opts) {
		return nil, transport.ErrUpgradeRejected
	}
	return &transport.Result{}, nil
}

// DeliverOpen hands a raw socket to the consumer. token is the
// per-connection token the host echoed back from the upgrade call, url the
// original request URL; either can be empty if the host does not track it.
func (m *Multiplexer) DeliverOpen(conn transport.Conn, token, url string) {
	m.callbacks.OnOpen(conn, token, url)
}

func (m *Multiplexer) DeliverMessage(conn transport.Conn, data []byte, binary bool) {
	m.callbacks.OnMessage(conn, data, binary)
}

func (m *Multiplexer) DeliverClose(conn transport.Conn, code int, reason string) {
	m.callbacks.OnClose(conn, code, reason)
}

func (m *Multiplexer) DeliverError(conn transport.Conn, err error) {
	m.callbacks.OnError(conn, err)
}
