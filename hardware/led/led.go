// Package led drives RGB status LED on three GPIO lines.
package led

import (
	"sync"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
)

type RGB interface {
	Set(r, g, b bool) error
	Close() error
}

type PinMap struct {
	Red   uint32
	Green uint32
	Blue  uint32
}

type GPIO struct {
	chip  gpio.Chiper
	lines gpio.Lineser
	red   gpio.LineSetFunc
	green gpio.LineSetFunc
	blue  gpio.LineSetFunc
}

func Open(chipName string, pins PinMap) (*GPIO, error) {
	chip, err := gpio.Open(chipName, "telenode")
	if err != nil {
		return nil, errors.Annotatef(err, "gpio open chip=%s", chipName)
	}
	l, err := NewGPIO(chip, pins)
	if err != nil {
		_ = chip.Close()
		return nil, err
	}
	return l, nil
}

// NewGPIO requests output lines on already opened chip, all off.
func NewGPIO(chip gpio.Chiper, pins PinMap) (*GPIO, error) {
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, "telenode-led",
		pins.Red, pins.Green, pins.Blue)
	if err != nil {
		return nil, errors.Annotatef(err, "gpio request lines=%v", pins)
	}
	l := &GPIO{
		chip:  chip,
		lines: lines,
		red:   lines.SetFunc(pins.Red),
		green: lines.SetFunc(pins.Green),
		blue:  lines.SetFunc(pins.Blue),
	}
	return l, l.Set(false, false, false)
}

func (l *GPIO) Set(r, g, b bool) error {
	l.red(bit(r))
	l.green(bit(g))
	l.blue(bit(b))
	return errors.Annotate(l.lines.Flush(), "led flush")
}

func (l *GPIO) Close() error {
	errs := []error{l.lines.Close(), l.chip.Close()}
	for _, e := range errs {
		if e != nil {
			return errors.Annotate(e, "led close")
		}
	}
	return nil
}

func bit(on bool) byte {
	if on {
		return 1
	}
	return 0
}

// State is last color written, used by Mock and diagnostics.
type State struct{ R, G, B bool }

func (s State) String() string {
	switch s {
	case State{}:
		return "off"
	case State{R: true}:
		return "red"
	case State{G: true}:
		return "green"
	case State{B: true}:
		return "blue"
	}
	c := []byte("---")
	if s.R {
		c[0] = 'r'
	}
	if s.G {
		c[1] = 'g'
	}
	if s.B {
		c[2] = 'b'
	}
	return string(c)
}

type Mock struct {
	mu      sync.Mutex
	History []State
	Err     error
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Set(r, g, b bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.History = append(m.History, State{r, g, b})
	return m.Err
}

func (m *Mock) Close() error { return nil }

func (m *Mock) Last() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.History) == 0 {
		return State{}
	}
	return m.History[len(m.History)-1]
}

type Noop struct{}

func (Noop) Set(r, g, b bool) error { return nil }
func (Noop) Close() error           { return nil }
