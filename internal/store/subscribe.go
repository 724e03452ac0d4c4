package store

import "github.com/rs/zerolog/log"

// Subscribe returns a channel receiving every published state and a cancel func.
// A subscriber whose buffer is full misses states rather than blocking the store.
func (s *Store) Subscribe(buffer int) (<-chan State, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan State, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Close closes every subscriber channel.
func (s *Store) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, c := range s.subs {
		delete(s.subs, id)
		close(c)
	}
}

// publish runs with mu held so states reach subscribers in Version order.
func (s *Store) publish(st State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, c := range s.subs {
		select {
		case c <- st:
		default:
			log.Warn().Int("subscriber", id).Uint64("version", st.Version).Msg("subscriber too slow, state dropped")
		}
	}
}
