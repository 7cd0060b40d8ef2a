// Package netsvc is the inbound network service of the node.
//
// Background goroutines accept connections and read payloads, producing
// events into bounded queue. Loop goroutine drains the queue with Poll,
// without blocking, and runs all handlers synchronously.
package netsvc

import (
	"fmt"
	"time"
)

type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventAccepted
	EventReceived
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventAccepted:
		return "accepted"
	case EventReceived:
		return "received"
	case EventClosed:
		return "closed"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

type Event struct {
	Kind EventKind
	Conn Conn
	Data []byte // only Received, may be empty
	Err  error  // only Closed, reason
}

func (e Event) String() string {
	switch e.Kind {
	case EventReceived:
		return fmt.Sprintf("%s conn=%s len=%d", e.Kind, e.Conn, len(e.Data))
	case EventClosed:
		return fmt.Sprintf("%s conn=%s err=%v", e.Kind, e.Conn, e.Err)
	}
	return fmt.Sprintf("%s conn=%s", e.Kind, e.Conn)
}

// Conn is one accepted stream connection.
// Close must be idempotent.
type Conn interface {
	fmt.Stringer
	ID() uint64
	Write(b []byte) (int, error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Source is polled by loop goroutine. Poll must not block.
type Source interface {
	Poll() []Event
	Addr() string
	Close() error
}
