package i2c

import (
	"github.com/juju/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

type periphBus struct {
	bus i2c.BusCloser
}

// NewPeriphBus opens bus by periph registry name, "" picks the first one.
func NewPeriphBus(name string) (Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph/init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Annotatef(err, "i2creg.Open name=%s", name)
	}
	return &periphBus{bus: bus}, nil
}

func (b *periphBus) Tx(addr uint16, w, r []byte) error {
	if err := b.bus.Tx(addr, w, r); err != nil {
		return errors.Annotatef(err, "i2c Tx addr=%02x", addr)
	}
	return nil
}

func (b *periphBus) Close() error { return b.bus.Close() }
