// Package mode is the two state display mode machine.
// Reading -> Message on every inbound message, Message -> Reading after idle timeout.
package mode

import (
	"time"
)

type Mode uint8

const (
	ModeReading Mode = iota
	ModeMessage
)

func (m Mode) String() string {
	switch m {
	case ModeReading:
		return "Reading"
	case ModeMessage:
		return "Message"
	}
	return "Mode(invalid)"
}

const DefaultIdleTimeout = 30 * time.Second

// State is owned by the loop goroutine, not safe for concurrent use.
type State struct {
	current Mode
	last    time.Time
	timeout time.Duration
}

func NewState(timeout time.Duration) *State {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &State{current: ModeReading, timeout: timeout}
}

func (s *State) Current() Mode          { return s.current }
func (s *State) LastChange() time.Time  { return s.last }
func (s *State) Timeout() time.Duration { return s.timeout }

// Notify switches to Message and restarts idle timer, also when already in Message.
func (s *State) Notify(now time.Time) {
	s.current = ModeMessage
	s.last = now
}

// CheckIdle reverts to Reading when idle for at least timeout.
// Returns true only on actual transition.
func (s *State) CheckIdle(now time.Time) bool {
	if s.current != ModeMessage {
		return false
	}
	if now.Sub(s.last) < s.timeout {
		return false
	}
	s.current = ModeReading
	return true
}
