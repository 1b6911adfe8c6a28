package uniws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingStoreRegisterAndResolve(t *testing.T) {
	store := newPendingStore(NewNoopDebugger())
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")

	assert.True(t, store.register("t1", a1))
	assert.True(t, store.register("t2", a2))
	assert.Equal(t, 2, store.len())

	// Last writer does not overwrite.
	assert.False(t, store.register("t1", a2))
	got, ok := store.resolveKey("t1")
	assert.True(t, ok)
	assert.True(t, got == a1)

	// Removed exactly once.
	_, ok = store.resolveKey("t1")
	assert.False(t, ok)
	assert.Equal(t, 1, store.len())
}

func TestPendingStoreResolveFuncInRegistrationOrder(t *testing.T) {
	store := newPendingStore(NewNoopDebugger())
	a1 := newTestAdapter("s1", "t1", "ws://example.com/same")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/same")
	store.register("t1", a1)
	store.register("t2", a2)

	got, ok := store.resolveFunc(func(_ string, a *socketAdapter) bool {
		return a.url == "ws://example.com/same"
	})
	assert.True(t, ok)
	assert.True(t, got == a1)
}

func TestPendingStoreSolePending(t *testing.T) {
	store := newPendingStore(NewNoopDebugger())
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	store.register("t1", a1)

	got, ok := store.solePending()
	assert.True(t, ok)
	assert.True(t, got == a1)
	assert.Equal(t, 0, store.len())

	// Not applicable with zero or more than one entry.
	_, ok = store.solePending()
	assert.False(t, ok)

	store.register("t1", a1)
	store.register("t2", newTestAdapter("s2", "t2", "ws://example.com/b"))
	_, ok = store.solePending()
	assert.False(t, ok)
}

func TestPendingStoreRemove(t *testing.T) {
	store := newPendingStore(NewNoopDebugger())
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	store.register("t1", a1)

	assert.True(t, store.remove(a1))
	assert.False(t, store.remove(a1))
	assert.Equal(t, 0, store.len())
}

func TestPendingStoreDrainAll(t *testing.T) {
	store := newPendingStore(NewNoopDebugger())
	a1 := newTestAdapter("s1", "t1", "ws://example.com/a")
	a2 := newTestAdapter("s2", "t2", "ws://example.com/b")
	store.register("t1", a1)
	store.register("t2", a2)

	adapters := store.drainAll()
	assert.Equal(t, []*socketAdapter{a1, a2}, adapters)
	assert.Equal(t, 0, store.len())
	assert.Empty(t, store.drainAll())
}
