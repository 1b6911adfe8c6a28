package uniws

import "errors"

// ErrServerClosed is wrapped by the error Upgrade returns after the server
// was closed.
var ErrServerClosed = errors.New("uniws: server closed")

// ErrDuplicateKey is wrapped by the error Upgrade returns when an explicit
// upgrade key collides with an already pending one. Two concurrent
// upgrades are never allowed to silently merge.
var ErrDuplicateKey = errors.New("uniws: an upgrade with this key is already pending")

// UpgradeRejectedError is returned by Upgrade when the transport refused
// the handshake. The pending registry entry is removed before it is
// returned.
type UpgradeRejectedError struct {
	err error
}

func (e *UpgradeRejectedError) Error() string {
	return "uniws: upgrade rejected: " + e.err.Error()
}

func (e *UpgradeRejectedError) Unwrap() error {
	return e.err
}

// This is a wrapper for the errors internal to uniws.
//
// If you see this error, this means that the problem is neither a network
// error, nor an error caused by you, but the source of the error is uniws.
// Open an issue on GitHub.
type InternalError struct {
	err error
}

func (e InternalError) Error() string {
	return "uniws: internal error: " + e.err.Error()
}

func (e InternalError) Unwrap() error {
	return e.err
}

func wrapInternalError(err error) *InternalError {
	return &InternalError{err: err}
}
