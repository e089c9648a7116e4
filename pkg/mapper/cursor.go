package mapper

import "sync"

// CursorState holds the next round-robin index for every directory served.
// One instance is shared by all requests for the life of the server.
type CursorState struct {
	mu      sync.Mutex
	cursors map[string]int
}

// NewCursorState creates an empty cursor map.
func NewCursorState() *CursorState {
	return &CursorState{cursors: make(map[string]int)}
}

// Next returns the index to serve from a directory with count candidates and
// advances the stored cursor. A stored cursor that ran past count restarts
// at zero. The stored value may exceed count after the call; the next call
// corrects it.
func (s *CursorState) Next(dir string, count int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked(dir, count)
}

func (s *CursorState) nextLocked(dir string, count int) int {
	idx := s.cursors[dir]
	if idx >= count {
		idx = 0
	}
	s.cursors[dir] = idx + 1
	return idx
}

// Peek returns the stored cursor for dir without changing it.
func (s *CursorState) Peek(dir string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[dir]
}

// Reset forgets the cursor for dir so the next pick starts a new cycle.
func (s *CursorState) Reset(dir string) {
	s.mu.Lock()
	delete(s.cursors, dir)
	s.mu.Unlock()
}

// ResetAll forgets every cursor.
func (s *CursorState) ResetAll() {
	s.mu.Lock()
	clear(s.cursors)
	s.mu.Unlock()
}

// Len returns the number of directories with a stored cursor.
func (s *CursorState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

// withLock runs fn while holding the cursor lock.
func (s *CursorState) withLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
