package uniws

import "reflect"

// Handler removal compares function identity, so the same func value (or
// method value) passed to On and Off refers to the same handler.
func fnEqual(a, b any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// OnOpen registers f for the synthetic open event. If the event already
// fired, f is invoked exactly once, asynchronously, on its own goroutine:
// the catch-up must not depend on the owning server still running its
// event loop. This is what keeps a handler registered immediately after
// Upgrade returns from missing an open produced by a synchronous bind.
func (s *socketAdapter) OnOpen(f OpenFunc) {
	s.mu.Lock()
	if s.openEmitted {
		s.mu.Unlock()
		go f()
		return
	}
	s.openHandlers.on(f)
	s.mu.Unlock()
}

func (s *socketAdapter) OnceOpen(f OpenFunc) {
	s.mu.Lock()
	if s.openEmitted {
		s.mu.Unlock()
		go f()
		return
	}
	s.openHandlers.once(f)
	s.mu.Unlock()
}

func (s *socketAdapter) OffOpen(f ...OpenFunc) {
	s.openHandlers.off(func(h OpenFunc) bool {
		for _, fn := range f {
			if fnEqual(h, fn) {
				return true
			}
		}
		return false
	})
}

func (s *socketAdapter) OnMessage(f MessageFunc) {
	s.messageHandlers.on(f)
}

func (s *socketAdapter) OnceMessage(f MessageFunc) {
	s.messageHandlers.once(f)
}

func (s *socketAdapter) OffMessage(f ...MessageFunc) {
	s.messageHandlers.off(func(h MessageFunc) bool {
		for _, fn := range f {
			if fnEqual(h, fn) {
				return true
			}
		}
		return false
	})
}

func (s *socketAdapter) OnClose(f CloseFunc) {
	s.closeHandlers.on(f)
}

func (s *socketAdapter) OnceClose(f CloseFunc) {
	s.closeHandlers.once(f)
}

func (s *socketAdapter) OffClose(f ...CloseFunc) {
	s.closeHandlers.off(func(h CloseFunc) bool {
		for _, fn := range f {
			if fnEqual(h, fn) {
				return true
			}
		}
		return false
	})
}

func (s *socketAdapter) OnError(f ErrorFunc) {
	s.errorHandlers.on(f)
}

func (s *socketAdapter) OnceError(f ErrorFunc) {
	s.errorHandlers.once(f)
}

func (s *socketAdapter) OffError(f ...ErrorFunc) {
	s.errorHandlers.off(func(h ErrorFunc) bool {
		for _, fn := range f {
			if fnEqual(h, fn) {
				return true
			}
		}
		return false
	})
}

func (s *socketAdapter) OffAll() {
	s.openHandlers.offAll()
	s.messageHandlers.offAll()
	s.closeHandlers.offAll()
	s.errorHandlers.offAll()
}
