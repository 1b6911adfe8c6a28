package uniws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uniws/uniws/internal/utils"
)

func newTestMatchEngine() (*matchEngine, *pendingStore) {
	store := newPendingStore(NewNoopDebugger())
	return newMatchEngine(store, NewNoopDebugger()), store
}

func TestMatchByToken(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("t1", a1)
	store.register("t2", a2)

	got, ok := engine.resolve("t2", "")
	assert.True(t, ok)
	assert.True(t, got == a2)
	assert.Equal(t, 1, store.len())

	// An event tagged with an already resolved token matches nothing.
	_, ok = engine.resolve("t2", "")
	assert.False(t, ok)
}

func TestMatchByTokenWithOverriddenKey(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("custom-key-1", a1)
	store.register("custom-key-2", a2)

	got, ok := engine.resolve("t1", "")
	assert.True(t, ok)
	assert.True(t, got == a1)
}

func TestMatchByLiteralURL(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("t1", a1)
	store.register("t2", a2)

	got, ok := engine.resolve("", "ws://example.com/b")
	assert.True(t, ok)
	assert.True(t, got == a2)
}

func TestMatchByNormalizedURL(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/chat")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/other")
	store.register("t1", a1)
	store.register("t2", a2)

	// Scheme differences and default ports are stripped.
	got, ok := engine.resolve("", "http://example.com:80/chat")
	assert.True(t, ok)
	assert.True(t, got == a1)
}

func TestMatchSolePendingFallback(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	store.register("t1", a1)

	got, ok := engine.resolve("", "")
	assert.True(t, ok)
	assert.True(t, got == a1)
}

func TestMatchNoFallbackWithMultiplePending(t *testing.T) {
	engine, store := newTestMatchEngine()
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("t1", a1)
	store.register("t2", a2)

	_, ok := engine.resolve("", "")
	assert.False(t, ok)
	assert.Equal(t, 2, store.len())
}

func TestMatchSoleUnboundAcrossStores(t *testing.T) {
	engine, store := newTestMatchEngine()
	other := newPendingStore(NewNoopDebugger())
	liveStores.Add(store)
	liveStores.Add(other)
	defer liveStores.Remove(store)
	defer liveStores.Remove(other)

	// Two pending entries in this server's store, but one of them is
	// already bound: the last-resort step finds the sole unbound one.
	bound := newTestAdapter("s1", "t1", "ws://example.com/a")
	bound.bind(utils.NewTestConn())
	unbound := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("t1", bound)
	store.register("t2", unbound)

	got, ok := engine.resolve("", "")
	assert.True(t, ok)
	assert.True(t, got == unbound)

	// With a second unbound adapter in another live store, the step is
	// ambiguous and must not match.
	store.register("t2", unbound)
	other.register("t3", newTestAdapter("s3", "t3", "ws://example.com/c"))
	_, ok = engine.resolve("", "")
	assert.False(t, ok)
}

func TestMatchMissOnEmptyStore(t *testing.T) {
	engine, _ := newTestMatchEngine()
	_, ok := engine.resolve("tX", "ws://example.com/x")
	assert.False(t, ok)
}

func TestNormalizeUpgradeURL(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want string
	}{
		{"ws://example.com/chat", "example.com:80/chat"},
		{"http://example.com/chat", "example.com:80/chat"},
		{"http://example.com:80/chat", "example.com:80/chat"},
		{"wss://example.com/chat", "example.com:443/chat"},
		{"https://example.com:443/chat", "example.com:443/chat"},
		{"ws://example.com:9000", "example.com:9000/"},
	} {
		got, err := normalizeUpgradeURL(tt.raw)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
