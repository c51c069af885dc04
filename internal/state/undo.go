package state

// undoEntry holds the inverse of the last destructive mutation. Only one
// level is kept: a new destructive operation replaces the previous entry.
type undoEntry struct {
	restore func(*State)
}

// rememberUndo records the inverse of the mutation currently being applied.
// Must be called from inside a mutate callback (the lock is already held).
func (s *Store) rememberUndo(restore func(*State)) {
	s.undo = &undoEntry{restore: restore}
}

// CanUndo reports whether a destructive operation is available to revert.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo != nil
}

// Undo reverts the most recent destructive operation, if any. One-shot:
// the entry is consumed whether or not anything changed.
func (s *Store) Undo() bool {
	s.mu.Lock()
	entry := s.undo
	s.undo = nil
	s.mu.Unlock()
	if entry == nil {
		return false
	}
	s.mutate(entry.restore)
	return true
}
