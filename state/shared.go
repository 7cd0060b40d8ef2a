package state

import (
	"github.com/fsae-telemetry/telenode/message"
	"github.com/fsae-telemetry/telenode/mode"
	"github.com/fsae-telemetry/telenode/sampler"
)

// Shared is the node state owned by loop goroutine and lent to components per call.
// No locking, never hand it to other goroutines.
type Shared struct {
	Reading  sampler.Reading
	Message  *message.Buffer
	Mode     *mode.State
	Messages uint64 // received since boot
}

func NewShared(c *NodeConfig) *Shared {
	return &Shared{
		Message: message.New(c.Initial()),
		Mode:    mode.NewState(c.IdleTimeout()),
	}
}
