package led

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gpio "github.com/temoto/gpio-cdev-go"
	gpio_mock "github.com/temoto/gpio-cdev-go/mock"
)

func TestGPIO(t *testing.T) {
	t.Parallel()
	pins := PinMap{Red: 13, Green: 11, Blue: 12}
	values := map[uint32]byte{}
	setter := func(line uint32) gpio.LineSetFunc {
		return func(v byte) { values[line] = v }
	}

	lines := &gpio_mock.MockLines{}
	lines.On("SetFunc", uint32(13)).Return(setter(13))
	lines.On("SetFunc", uint32(11)).Return(setter(11))
	lines.On("SetFunc", uint32(12)).Return(setter(12))
	lines.On("Flush").Return(nil)
	lines.On("Close").Return(nil)
	chip := &gpio_mock.MockChip{}
	chip.On("OpenLines", gpio.GPIOHANDLE_REQUEST_OUTPUT, "telenode-led", uint32(13), uint32(11), uint32(12)).Return(lines, nil)
	chip.On("Close").Return(nil)

	l, err := NewGPIO(chip, pins)
	require.NoError(t, err)
	assert.Equal(t, map[uint32]byte{13: 0, 11: 0, 12: 0}, values)

	require.NoError(t, l.Set(false, true, false))
	assert.Equal(t, map[uint32]byte{13: 0, 11: 1, 12: 0}, values)
	require.NoError(t, l.Set(true, false, false))
	assert.Equal(t, map[uint32]byte{13: 1, 11: 0, 12: 0}, values)

	require.NoError(t, l.Close())
	lines.AssertNumberOfCalls(t, "Flush", 3)
	chip.AssertExpectations(t)
	lines.AssertExpectations(t)
}

func TestGPIOErrors(t *testing.T) {
	t.Parallel()
	chip := &gpio_mock.MockChip{}
	chip.On("OpenLines", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return((*gpio_mock.MockLines)(nil), fmt.Errorf("busy"))
	_, err := NewGPIO(chip, PinMap{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")

	lines := &gpio_mock.MockLines{}
	lines.On("SetFunc", mock.Anything).Return(gpio.LineSetFunc(func(byte) {}))
	lines.On("Flush").Return(fmt.Errorf("ebadf"))
	chip2 := &gpio_mock.MockChip{}
	chip2.On("OpenLines", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(lines, nil)
	_, err = NewGPIO(chip2, PinMap{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "led flush")
}

func TestState(t *testing.T) {
	t.Parallel()
	cases := []struct {
		s      State
		expect string
	}{
		{State{}, "off"},
		{State{R: true}, "red"},
		{State{G: true}, "green"},
		{State{B: true}, "blue"},
		{State{R: true, B: true}, "r-b"},
		{State{true, true, true}, "rgb"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, c.s.String())
	}
}

func TestMock(t *testing.T) {
	t.Parallel()
	m := NewMock()
	assert.Equal(t, State{}, m.Last())
	require.NoError(t, m.Set(true, false, false))
	require.NoError(t, m.Set(false, true, false))
	assert.Equal(t, "green", m.Last().String())
	assert.Len(t, m.History, 2)
}
