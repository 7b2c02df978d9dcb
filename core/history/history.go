// Package history stores the lines a session has executed.
package history

import "sync"

// Store is an ordered list of executed lines.
type Store interface {
	// Append adds a line to the end of the history.
	Append(line string) error
	// Lines returns every stored line, oldest first.
	Lines() ([]string, error)
	// Clear deletes all entries.
	Clear() error
	// Close releases any resources held by the store.
	Close() error
}

// NewMemStore returns a Store that keeps at most max lines in memory; zero
// means unbounded.
func NewMemStore(max int, lines ...string) *MemStore {
	s := &MemStore{max: max}
	for _, line := range lines {
		s.Append(line)
	}
	return s
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu    sync.Mutex
	max   int
	lines []string
}

var _ Store = (*MemStore)(nil)

// Append implements Store.
func (s *MemStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	if s.max > 0 && len(s.lines) > s.max {
		s.lines = append([]string(nil), s.lines[len(s.lines)-s.max:]...)
	}
	return nil
}

// Lines implements Store.
func (s *MemStore) Lines() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...), nil
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return nil
}

// Close implements Store.
func (s *MemStore) Close() error {
	return nil
}
