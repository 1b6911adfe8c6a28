package uniws

import (
	"net"
	"net/url"
)

// matchEngine resolves an incoming raw socket event to exactly one pending
// adapter. Resolution is a strict fallback chain; each step is tried only
// if the previous one produced nothing:
//
//  1. exact match on the per-connection token
//  2. exact match on the literal request URL used at upgrade time
//  3. normalized URL match: scheme stripped (ws↔http), host:port and
//     path compared
//  4. the sole pending entry of this server's store. A convenience for the
//     single-connection case, not a correctness guarantee: a second
//     upgrade racing in between an open hook firing and its match can be
//     silently mis-wired here.
//  5. the sole not-yet-bound adapter across every live store in the
//     process, if exactly one such adapter exists.
//
// A hit always removes the entry from its store before forwarding, which
// guarantees at-most-once binding per adapter.
type matchEngine struct {
	store *pendingStore
	debug Debugger
}

func newMatchEngine(store *pendingStore, debug Debugger) *matchEngine {
	return &matchEngine{
		store: store,
		debug: debug.WithContext("match"),
	}
}

func (m *matchEngine) resolve(token, rawURL string) (*socketAdapter, bool) {
	if token != "" {
		if adapter, ok := m.store.resolveKey(token); ok {
			return adapter, true
		}
		// The registry key may have been overridden by the caller; the
		// adapter still carries the token attached at upgrade time.
		if adapter, ok := m.store.resolveFunc(func(_ string, a *socketAdapter) bool {
			return a.token == token
		}); ok {
			return adapter, true
		}
	}

	if rawURL != "" {
		if adapter, ok := m.store.resolveFunc(func(key string, a *socketAdapter) bool {
			return key == rawURL || a.url == rawURL
		}); ok {
			return adapter, true
		}

		if normalized, err := normalizeUpgradeURL(rawURL); err == nil {
			if adapter, ok := m.store.resolveFunc(func(_ string, a *socketAdapter) bool {
				n, err := normalizeUpgradeURL(a.url)
				return err == nil && n == normalized
			}); ok {
				return adapter, true
			}
		}
	}

	if adapter, ok := m.store.solePending(); ok {
		return adapter, true
	}

	return m.soleUnbound()
}

func (m *matchEngine) soleUnbound() (*socketAdapter, bool) {
	var (
		found      *socketAdapter
		foundStore *pendingStore
	)
	for _, store := range liveStores.ToSlice() {
		for _, adapter := range store.unbound() {
			if found != nil {
				m.debug.Log("more than one unbound adapter, no match")
				return nil, false
			}
			found = adapter
			foundStore = store
		}
	}
	if found == nil {
		return nil, false
	}
	// The entry can be matched concurrently by its own server; removal
	// decides the winner.
	if !foundStore.remove(found) {
		return nil, false
	}
	return found, true
}

// normalizeUpgradeURL reduces a request URL to host:port + path so that
// ws://h/p, http://h/p and ws://h:80/p all compare equal.
func normalizeUpgradeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	host := u.Host
	if host != "" && u.Port() == "" {
		switch u.Scheme {
		case "ws", "http":
			host = net.JoinHostPort(u.Hostname(), "80")
		case "wss", "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return host + path, nil
}
