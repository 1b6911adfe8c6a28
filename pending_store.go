package uniws

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/uniws/uniws/internal/sync"
)

// liveStores indexes the pending store of every live server in the
// process. Servers add their store at construction and remove it on
// Close. Only the last-resort match step reads it.
var liveStores = mapset.NewSet[*pendingStore]()

// pendingStore holds the adapters of one server that are awaiting binding,
// keyed by their matching token. A key maps to at most one adapter and an
// adapter appears in at most one store. Entries are removed exactly once:
// on a successful match, or when the owning server is torn down.
type pendingStore struct {
	mu       sync.Mutex
	adapters map[string]*socketAdapter
	order    []string
	debug    Debugger
}

func newPendingStore(debug Debugger) *pendingStore {
	return &pendingStore{
		adapters: make(map[string]*socketAdapter),
		debug:    debug.WithContext("pending store"),
	}
}

// register inserts. The last writer does not overwrite: a duplicate key is
// logged and rejected, since two concurrent upgrades must never silently
// merge.
func (p *pendingStore) register(key string, adapter *socketAdapter) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.adapters[key]; ok {
		p.debug.Log("duplicate key rejected", key)
		return false
	}
	p.adapters[key] = adapter
	p.order = append(p.order, key)
	return true
}

func (p *pendingStore) removeKeyLocked(key string) {
	delete(p.adapters, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// resolveKey removes and returns the adapter registered under key.
func (p *pendingStore) resolveKey(key string) (*socketAdapter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	adapter, ok := p.adapters[key]
	if !ok {
		return nil, false
	}
	p.removeKeyLocked(key)
	return adapter, true
}

// resolveFunc scans entries in registration order and removes and returns
// the first one the match function reports true for.
func (p *pendingStore) resolveFunc(match func(key string, adapter *socketAdapter) bool) (*socketAdapter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, key := range p.order {
		adapter := p.adapters[key]
		if match(key, adapter) {
			p.removeKeyLocked(key)
			return adapter, true
		}
	}
	return nil, false
}

// solePending removes and returns the only entry, if exactly one exists.
func (p *pendingStore) solePending() (*socketAdapter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.order) != 1 {
		return nil, false
	}
	key := p.order[0]
	adapter := p.adapters[key]
	p.removeKeyLocked(key)
	return adapter, true
}

// unbound returns, without removing, the entries whose adapter has no
// connection yet, in registration order.
func (p *pendingStore) unbound() []*socketAdapter {
	p.mu.Lock()
	defer p.mu.Unlock()
	var adapters []*socketAdapter
	for _, key := range p.order {
		if adapter := p.adapters[key]; !adapter.isBound() {
			adapters = append(adapters, adapter)
		}
	}
	return adapters
}

// remove deletes the entry holding adapter, wherever it is keyed.
func (p *pendingStore) remove(adapter *socketAdapter) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, key := range p.order {
		if p.adapters[key] == adapter {
			p.removeKeyLocked(key)
			return true
		}
	}
	return false
}

// drainAll removes and returns every remaining entry. Used at server
// shutdown.
func (p *pendingStore) drainAll() []*socketAdapter {
	p.mu.Lock()
	defer p.mu.Unlock()
	adapters := make([]*socketAdapter, 0, len(p.order))
	for _, key := range p.order {
		adapters = append(adapters, p.adapters[key])
	}
	p.adapters = make(map[string]*socketAdapter)
	p.order = nil
	return adapters
}

func (p *pendingStore) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}
