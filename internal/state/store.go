package state

import "sync"

// Store owns one session's state. Dispatch is serialized; readers either
// pull a Snapshot or Subscribe to changes.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

func NewStore(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]chan State)}
}

// Dispatch reduces a into the current state and returns the result.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Reduce(s.state, a)
	if next.Version == s.state.Version {
		return next
	}
	s.state = next
	for _, ch := range s.subs {
		offer(ch, next)
	}
	return next
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives the current state and every
// later one. A subscriber that falls behind only sees the newest state.
// The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// Close unsubscribes everyone.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// offer replaces whatever snapshot is still waiting in ch with st. Callers
// hold the store lock, so ch has no other sender.
func offer(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- st
}
