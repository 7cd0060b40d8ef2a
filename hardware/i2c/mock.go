package i2c

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// MockBus records writes and answers reads from a queue. For tests.
type MockBus struct {
	mu     sync.Mutex
	writes []MockTx
	reads  [][]byte
	closed bool

	Err error
}

type MockTx struct {
	Addr uint16
	W    []byte
}

func (m MockTx) String() string {
	return fmt.Sprintf("%02x:%s", m.Addr, hex.EncodeToString(m.W))
}

var _ Bus = &MockBus{}

func NewMockBus() *MockBus { return &MockBus{} }

// ExpectRead queues bytes for the next Tx with non-empty r.
func (m *MockBus) ExpectRead(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, append([]byte(nil), b...))
}

func (m *MockBus) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if len(w) != 0 {
		m.writes = append(m.writes, MockTx{Addr: addr, W: append([]byte(nil), w...)})
	}
	if len(r) != 0 {
		if len(m.reads) == 0 {
			return fmt.Errorf("mock i2c addr=%02x unexpected read len=%d", addr, len(r))
		}
		copy(r, m.reads[0])
		m.reads = m.reads[1:]
	}
	return nil
}

func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockBus) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Writes returns recorded writes and forgets them.
func (m *MockBus) Writes() []MockTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.writes
	m.writes = nil
	return ws
}

func (m *MockBus) WritesString() string {
	ws := m.Writes()
	ss := make([]string, len(ws))
	for i, w := range ws {
		ss[i] = w.String()
	}
	return strings.Join(ss, " ")
}
