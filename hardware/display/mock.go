package display

import "sync"

// MockSurface keeps copy of last submitted buffer.
type MockSurface struct {
	mu      sync.Mutex
	Last    []byte
	Area    Area
	Submits int
	Err     error
}

var _ Surface = &MockSurface{}

func (m *MockSurface) Submit(buf []byte, area Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submits++
	m.Last = append(m.Last[:0], buf...)
	m.Area = area
	return m.Err
}

func (m *MockSurface) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Submits
}
