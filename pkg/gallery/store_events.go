package gallery

// notifyUpdateLocked signals that the store has been updated.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) notifyUpdateLocked() {
	// Close the current channel to broadcast to all waiters
	select {
	case <-s.updateCh:
	default:
		close(s.updateCh)
		s.updateCh = make(chan struct{})
	}
}

// UpdateChannel returns a channel that is closed on the next change.
func (s *Store) UpdateChannel() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCh
}
