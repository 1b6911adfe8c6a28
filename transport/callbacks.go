package transport

import "sync/atomic"

type (
	// url is the request URL used at upgrade time when the transport knows
	// it, otherwise "". token likewise. Either can be empty.
	OpenFunc    func(conn Conn, token, url string)
	MessageFunc func(conn Conn, data []byte, binary bool)
	CloseFunc   func(conn Conn, code int, reason string)
	ErrorFunc   func(conn Conn, err error)
)

// Callbacks is the set of raw hooks a transport delivers events through.
// Hooks are swappable at any time and never nil.
type Callbacks struct {
	onOpen    atomic.Value
	onMessage atomic.Value
	onClose   atomic.Value
	onError   atomic.Value
}

func NewCallbacks() *Callbacks {
	c := new(Callbacks)
	c.Set(nil, nil, nil, nil)
	return c
}

func (c *Callbacks) OnOpen(conn Conn, token, url string) {
	f := c.onOpen.Load().(OpenFunc)
	f(conn, token, url)
}

func (c *Callbacks) OnMessage(conn Conn, data []byte, binary bool) {
	f := c.onMessage.Load().(MessageFunc)
	f(conn, data, binary)
}

func (c *Callbacks) OnClose(conn Conn, code int, reason string) {
	f := c.onClose.Load().(CloseFunc)
	f(conn, code, reason)
}

func (c *Callbacks) OnError(conn Conn, err error) {
	f := c.onError.Load().(ErrorFunc)
	f(conn, err)
}

func (c *Callbacks) Set(onOpen OpenFunc, onMessage MessageFunc, onClose CloseFunc, onError ErrorFunc) {
	if onOpen == nil {
		onOpen = func(conn Conn, token, url string) {}
	}
	c.onOpen.Store(onOpen)

	if onMessage == nil {
		onMessage = func(conn Conn, data []byte, binary bool) {}
	}
	c.onMessage.Store(onMessage)

	if onClose == nil {
		onClose = func(conn Conn, code int, reason string) {}
	}
	c.onClose.Store(onClose)

	if onError == nil {
		onError = func(conn Conn, err error) {}
	}
	c.onError.Store(onError)
}
