package main

import (
	"strings"
	"testing"

	"github.com/fsae-telemetry/telenode/hardware/i2c"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

type probeBus struct {
	*i2c.MockBus
	present map[uint16]bool
}

func (p probeBus) Tx(addr uint16, w, r []byte) error {
	if p.present[addr] {
		return nil
	}
	return errors.New("nack")
}

func TestProbe(t *testing.T) {
	t.Parallel()
	bus := probeBus{MockBus: i2c.NewMockBus(), present: map[uint16]bool{0x3c: true, 0x48: true}}
	lines := strings.Split(probe(bus), "\n")
	assert.Equal(t, "30: -- -- -- -- -- -- -- -- -- -- -- -- 3c -- -- --", lines[4])
	assert.Equal(t, "40: -- -- -- -- -- -- -- -- 48 -- -- -- -- -- -- --", lines[5])
	assert.Equal(t, "00:          -- -- -- -- -- -- -- -- -- -- -- -- --", lines[1])
	assert.Equal(t, "70: -- -- -- -- -- -- -- --                        ", lines[8])
}
