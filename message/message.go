// Package message keeps the last text received from the network peer.
package message

const Capacity = 64

// Buffer stores at most Capacity-1 bytes followed by zero terminator.
// Longer input is truncated silently. Zero value is empty.
type Buffer struct {
	b [Capacity]byte
	n int
}

func New(initial string) *Buffer {
	m := &Buffer{}
	m.SetString(initial)
	return m
}

// Set copies up to Capacity-1 bytes of p, returns number of bytes stored.
func (m *Buffer) Set(p []byte) int {
	n := copy(m.b[:Capacity-1], p)
	m.b[n] = 0
	for i := n + 1; i < Capacity; i++ {
		m.b[i] = 0
	}
	m.n = n
	return n
}

func (m *Buffer) SetString(s string) int { return m.Set([]byte(s)) }

func (m *Buffer) Len() int { return m.n }

// Bytes is a view valid until next Set.
func (m *Buffer) Bytes() []byte { return m.b[:m.n] }

func (m *Buffer) String() string { return string(m.b[:m.n]) }

// Raw returns whole backing array including terminator.
func (m *Buffer) Raw() [Capacity]byte { return m.b }
