package helpers

import (
	"time"
)

// Limited exponential backoff for retry delays.
// First delay is Min, each Failure() multiplies next delay by K up to Max.
// Not safe for concurrent use.
type Backoff struct {
	next time.Duration

	Min time.Duration
	Max time.Duration
	K   float32
	Res time.Duration // delay resolution for nice logs, default=1ms
}

// Use scenario:
// for {
//   err := op()
//   if err == nil { break }
//   time.Sleep(backoff.Failure())
// }
func (b *Backoff) Failure() time.Duration {
	if b.next == 0 {
		b.next = b.limit(b.Min)
		return b.next
	}
	b.next = b.limit(time.Duration(float32(b.next) * b.K))
	return b.next
}

func (b *Backoff) Next() time.Duration { return b.next }

func (b *Backoff) Reset() { b.next = 0 }

func (b *Backoff) limit(d time.Duration) time.Duration {
	if d < b.Min {
		d = b.Min
	}
	if b.Max != 0 && d > b.Max {
		d = b.Max
	}
	return b.round(d)
}

func (b *Backoff) round(d time.Duration) time.Duration {
	res := b.Res
	if res == 0 {
		res = 1 * time.Millisecond
	}
	return d / res * res
}
