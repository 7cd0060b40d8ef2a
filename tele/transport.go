package tele

import (
	"context"
	"sync"

	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/state"
)

type Transporter interface {
	Init(ctx context.Context, log *log2.Log, nodeID string, c state.TeleConfig) error
	SendTelemetry(payload []byte) bool
	CloseTele()
}

// MockTransport records payloads, safe for concurrent use.
type MockTransport struct {
	mu       sync.Mutex
	NodeID   string
	Payloads [][]byte
	Fail     bool
	Closed   bool
}

var _ Transporter = &MockTransport{}

func (m *MockTransport) Init(ctx context.Context, log *log2.Log, nodeID string, c state.TeleConfig) error {
	m.mu.Lock()
	m.NodeID = nodeID
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) SendTelemetry(payload []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return false
	}
	m.Payloads = append(m.Payloads, append([]byte(nil), payload...))
	return true
}

func (m *MockTransport) CloseTele() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}

func (m *MockTransport) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.Payloads...)
}
