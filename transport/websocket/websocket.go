// Package websocket implements the direct transport variant on top of
// nhooyr.io/websocket: Upgrade accepts the HTTP request and returns a fully
// connected Conn synchronously.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uniws/uniws/transport"
	"nhooyr.io/websocket"
)

type Config struct {
	AcceptOptions *websocket.AcceptOptions

	// ReadLimit is the maximum message size in bytes. Zero keeps the
	// nhooyr default.
	ReadLimit int64

	// WriteTimeout is the default bound on each raw write. Overridable
	// per upgrade via UpgradeOptions.
	WriteTimeout time.Duration
}

type Transport struct {
	config    Config
	callbacks *transport.Callbacks
}

func NewTransport(config *Config) *Transport {
	if config == nil {
		config = new(Config)
	}
	return &Transport{
		config:    *config,
		callbacks: transport.NewCallbacks(),
	}
}

func (t *Transport) Name() string { return "websocket" }

func (t *Transport) Callbacks() *transport.Callbacks { return t.callbacks }

func (t *Transport) Upgrade(w http.ResponseWriter, r *http.Request, opts *transport.UpgradeOptions) (*transport.Result, error) {
	if opts == nil {
		opts = new(transport.UpgradeOptions)
	}

	acceptOptions := t.config.AcceptOptions
	if len(opts.Subprotocols) != 0 {
		var ao websocket.AcceptOptions
		if acceptOptions != nil {
			ao = *acceptOptions
		}
		ao.Subprotocols = opts.Subprotocols
		acceptOptions = &ao
	}
	for k, v := range opts.Header {
		w.Header()[k] = v
	}

	ws, err := websocket.Accept(w, r, acceptOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrUpgradeRejected, err)
	}
	if t.config.ReadLimit != 0 {
		ws.SetReadLimit(t.config.ReadLimit)
	}

	writeTimeout := opts.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = t.config.WriteTimeout
	}

	c := newConn(ws, writeTimeout)
	go c.readLoop(t.callbacks)

	return &transport.Result{
		Conn: c,
		Handshake: &transport.Handshake{
			StatusCode:  http.StatusSwitchingProtocols,
			Subprotocol: ws.Subprotocol(),
			Header:      w.Header().Clone(),
		},
	}, nil
}

type conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	state     atomic.Int32
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration) *conn {
	c := &conn{
		ws:           ws,
		writeTimeout: writeTimeout,
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state.Store(int32(transport.ConnOpen))
	return c
}

func (c *conn) Send(ctx context.Context, data []byte, binary bool) error {
	if transport.ConnState(c.state.Load()) != transport.ConnOpen {
		return errors.New("websocket: send on closed connection")
	}
	if c.writeTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	mt := websocket.MessageText
	if binary {
		mt = websocket.MessageBinary
	}
	return c.ws.Write(ctx, mt, data)
}

func (c *conn) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		c.state.Store(int32(transport.ConnClosed))
		err = c.ws.Close(websocket.StatusCode(code), reason)
		c.cancel()
	})
	return err
}

func (c *conn) State() transport.ConnState {
	return transport.ConnState(c.state.Load())
}

func (c *conn) Protocol() string { return c.ws.Subprotocol() }

func (c *conn) readLoop(callbacks *transport.Callbacks) {
	for {
		mt, data, err := c.ws.Read(c.ctx)
		if err != nil {
			c.handleReadError(callbacks, err)
			return
		}
		callbacks.OnMessage(c, data, mt == websocket.MessageBinary)
	}
}

func (c *conn) handleReadError(callbacks *transport.Callbacks, err error) {
	c.state.Store(int32(transport.ConnClosed))

	var ce websocket.CloseError
	if errors.As(err, &ce) {
		code := int(ce.Code)
		if !isExpectedCloseCode(ce.Code) {
			callbacks.OnError(c, err)
		}
		c.Close(transport.CodeNormalClosure, "")
		callbacks.OnClose(c, code, ce.Reason)
		return
	}

	// Locally initiated close cancels the read context; that is not an
	// error worth reporting.
	if c.ctx.Err() == nil {
		callbacks.OnError(c, err)
	}
	c.Close(transport.CodeNormalClosure, "")
	callbacks.OnClose(c, transport.CodeAbnormalClosure, "")
}
