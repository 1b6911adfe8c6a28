package utils

import (
	"context"

	"github.com/uniws/uniws/internal/sync"
	"github.com/uniws/uniws/transport"
)

// TestConn is an in-memory transport.Conn that records everything written
// to it. Use this for testing purposes.
type TestConn struct {
	mu          sync.Mutex
	writes      [][]byte
	binary      []bool
	state       transport.ConnState
	closeCode   int
	closeReason string
	closeCalls  int

	// SendErr, when set, is returned by every subsequent Send.
	SendErr error

	Subprotocol string
}

func NewTestConn() *TestConn {
	return &TestConn{state: transport.ConnOpen}
}

func (c *TestConn) Send(_ context.Context, data []byte, binary bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.writes = append(c.writes, buf)
	c.binary = append(c.binary, binary)
	return nil
}

func (c *TestConn) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCalls++
	if c.closeCalls == 1 {
		c.closeCode = code
		c.closeReason = reason
		c.state = transport.ConnClosed
	}
	return nil
}

func (c *TestConn) State() transport.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *TestConn) Protocol() string { return c.Subprotocol }

// Writes returns the recorded payloads in write order.
func (c *TestConn) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	writes := make([]string, len(c.writes))
	for i, w := range c.writes {
		writes[i] = string(w)
	}
	return writes
}

func (c *TestConn) CloseCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCalls
}

func (c *TestConn) CloseCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCode
}
