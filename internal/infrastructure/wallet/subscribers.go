package wallet

import (
	"sync"

	"offramp/internal/app/port"
)

// subscribers fans chain changes out to registered callbacks.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]port.ChainChangeFunc
}

func (s *subscribers) add(fn port.ChainChangeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]port.ChainChangeFunc)
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// emit calls every subscriber outside the lock so callbacks may subscribe or unsubscribe.
func (s *subscribers) emit(chainID uint64, connected bool) {
	s.mu.Lock()
	fns := make([]port.ChainChangeFunc, 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(chainID, connected)
	}
}
