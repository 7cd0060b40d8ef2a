package ssd1306

import (
	"fmt"
	"image"
	"testing"

	"github.com/fsae-telemetry/telenode/hardware/display"
	"github.com/fsae-telemetry/telenode/hardware/i2c"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Parallel()
	bus := i2c.NewMockBus()
	d := New(bus, 0, 128, 64)
	require.NoError(t, d.Init())
	ws := bus.Writes()
	require.Len(t, ws, 26)
	for _, w := range ws {
		assert.Equal(t, uint16(DefaultAddress), w.Addr)
		require.Len(t, w.W, 2)
		assert.Equal(t, byte(ctrlCommand), w.W[0])
	}
	assert.Equal(t, byte(cmdDisplayOff), ws[0].W[1])
	assert.Equal(t, byte(63), ws[6].W[1]) // mux ratio
	assert.Equal(t, byte(0x12), ws[11].W[1])
	assert.Equal(t, byte(cmdDisplayOn), ws[len(ws)-1].W[1])
}

func TestSubmitFullFrame(t *testing.T) {
	t.Parallel()
	bus := i2c.NewMockBus()
	d := New(bus, 0x3d, 128, 64)
	f := display.NewFrame(image.Point{X: 128, Y: 64}, d)
	f.SetPixel(0, 0, display.On)
	f.SetPixel(127, 63, display.On)
	require.NoError(t, f.Display())

	ws := bus.Writes()
	require.Len(t, ws, 7)
	assert.Equal(t, "3d:8021 3d:8000 3d:807f 3d:8022 3d:8000 3d:8007",
		fmt.Sprint(ws[0], " ", ws[1], " ", ws[2], " ", ws[3], " ", ws[4], " ", ws[5]))
	data := ws[6].W
	require.Len(t, data, 1025)
	assert.Equal(t, byte(ctrlData), data[0])
	assert.Equal(t, byte(0x01), data[1])
	assert.Equal(t, byte(0x80), data[1024])
}

func TestSubmitInvalid(t *testing.T) {
	t.Parallel()
	bus := i2c.NewMockBus()
	d := New(bus, 0, 128, 64)
	cases := []struct {
		name string
		buf  []byte
		area display.Area
	}{
		{"column-overflow", make([]byte, 1024), display.Area{EndColumn: 128, EndPage: 7}},
		{"page-overflow", make([]byte, 1024), display.Area{EndColumn: 127, EndPage: 8}},
		{"reversed", make([]byte, 1024), display.Area{StartColumn: 5, EndColumn: 4, EndPage: 7}},
		{"short-buffer", make([]byte, 10), display.Area{EndColumn: 127, EndPage: 7}},
	}
	for _, c := range cases {
		assert.Error(t, d.Submit(c.buf, c.area), c.name)
	}
	assert.Empty(t, bus.Writes())
}

func TestSubmitPartialArea(t *testing.T) {
	t.Parallel()
	bus := i2c.NewMockBus()
	d := New(bus, 0, 128, 64)
	require.NoError(t, d.Submit(helpers.MustHex("0102030405060708"), display.Area{StartColumn: 10, EndColumn: 13, StartPage: 2, EndPage: 3}))
	ws := bus.Writes()
	require.Len(t, ws, 7)
	assert.Equal(t, "3c:400102030405060708", ws[6].String())
}

func TestBusError(t *testing.T) {
	t.Parallel()
	bus := i2c.NewMockBus()
	bus.Err = fmt.Errorf("nack")
	d := New(bus, 0, 128, 64)
	err := d.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nack")
	assert.Error(t, d.Submit(make([]byte, 1024), display.Area{EndColumn: 127, EndPage: 7}))
}
