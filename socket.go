package uniws

type ReadyState int

const (
	ReadyStateConnecting ReadyState = iota
	ReadyStateOpen
	ReadyStateClosing
	ReadyStateClosed
)

func (s ReadyState) String() string {
	switch s {
	case ReadyStateConnecting:
		return "connecting"
	case ReadyStateOpen:
		return "open"
	case ReadyStateClosing:
		return "closing"
	case ReadyStateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

type (
	OpenFunc    func()
	MessageFunc func(data []byte, binary bool)
	CloseFunc   func(code int, reason string)
	ErrorFunc   func(err error)
)

// Socket is the stable object returned to application code. It represents
// a connection that may not physically exist yet: Send and Close issued
// before the underlying connection is bound are queued and replayed in
// order at binding time.
type Socket interface {
	// ID is an opaque token, unique per upgrade attempt.
	ID() string

	// Send writes a binary message. Never fails for "not yet bound"; a
	// send on a socket that never binds is silently dropped.
	Send(data []byte)

	// SendText writes a text message with the same deferral semantics as
	// Send.
	SendText(data string)

	// Close closes the socket. code 0 means normal closure. Closing twice,
	// or closing a socket that never bound, is a no-op.
	Close(code int, reason string)

	// ReadyState reports "connecting" until the underlying connection is
	// bound, then tracks its live state.
	ReadyState() ReadyState

	// Protocol returns the negotiated subprotocol, or "" before binding.
	Protocol() string

	// URL is the request URL used at upgrade time.
	URL() string

	// Handlers registered for an event kind fire in registration order.
	//
	// An open handler registered after the open event already fired is
	// still invoked, exactly once, asynchronously. This keeps handlers
	// registered right after Upgrade returns from missing the event when
	// the transport binds synchronously inside the upgrade call.
	OnOpen(f OpenFunc)
	OnceOpen(f OpenFunc)
	OffOpen(f ...OpenFunc)

	OnMessage(f MessageFunc)
	OnceMessage(f MessageFunc)
	OffMessage(f ...MessageFunc)

	OnClose(f CloseFunc)
	OnceClose(f CloseFunc)
	OffClose(f ...CloseFunc)

	OnError(f ErrorFunc)
	OnceError(f ErrorFunc)
	OffError(f ...ErrorFunc)

	OffAll()
}
