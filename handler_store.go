package uniws

import "github.com/uniws/uniws/internal/sync"

// handlerStore keeps the handlers registered for one event kind.
// Registration order is the emission order; once handlers fire last.
type handlerStore[T any] struct {
	mu        sync.Mutex
	funcs     []T
	funcsOnce []T
}

func newHandlerStore[T any]() *handlerStore[T] {
	return new(handlerStore[T])
}

func (e *handlerStore[T]) on(handler T) {
	e.mu.Lock()
	e.funcs = append(e.funcs, handler)
	e.mu.Unlock()
}

func (e *handlerStore[T]) once(handler T) {
	e.mu.Lock()
	e.funcsOnce = append(e.funcsOnce, handler)
	e.mu.Unlock()
}

// off removes every handler the match function reports true for.
func (e *handlerStore[T]) off(match func(handler T) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	remove := func(slice []T) []T {
		kept := slice[:0]
		for _, h := range slice {
			if !match(h) {
				kept = append(kept, h)
			}
		}
		return kept
	}

	e.funcs = remove(e.funcs)
	e.funcsOnce = remove(e.funcsOnce)
}

func (e *handlerStore[T]) offAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs = nil
	e.funcsOnce = nil
}

// getAll returns the registered handlers in registration order and clears
// the once handlers.
func (e *handlerStore[T]) getAll() (handlers []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	handlers = make([]T, 0, len(e.funcs)+len(e.funcsOnce))
	handlers = append(handlers, e.funcs...)
	handlers = append(handlers, e.funcsOnce...)
	e.funcsOnce = nil
	return
}
