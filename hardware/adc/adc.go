// Package adc provides raw analog samples for the temperature sensor.
package adc

import (
	"io/ioutil"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
)

// Source returns one raw unsigned conversion.
// On error the returned value is still used by callers (usually zero).
type Source interface {
	ReadRaw() (uint16, error)
}

const DefaultIIOPath = "/sys/bus/iio/devices/iio:device0/in_voltage2_raw"

// Linux industrial I/O sysfs channel, one file read per sample.
type IIO struct {
	Path string
}

func NewIIO(path string) *IIO {
	if path == "" {
		path = DefaultIIOPath
	}
	return &IIO{Path: path}
}

func (s *IIO) ReadRaw() (uint16, error) {
	b, err := ioutil.ReadFile(s.Path)
	if err != nil {
		return 0, errors.Annotate(err, "iio read")
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 16)
	if err != nil {
		return 0, errors.Annotatef(err, "iio parse path=%s", s.Path)
	}
	return uint16(v), nil
}

// Sim produces Center plus uniform noise in [-Noise, +Noise].
type Sim struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	Center uint16
	Noise  uint16
}

func NewSim(center, noise uint16, seed int64) *Sim {
	return &Sim{rnd: rand.New(rand.NewSource(seed)), Center: center, Noise: noise}
}

func (s *Sim) ReadRaw() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := int(s.Center)
	if s.Noise != 0 {
		v += s.rnd.Intn(2*int(s.Noise)+1) - int(s.Noise)
	}
	if v < 0 {
		v = 0
	}
	if v > 0xffff {
		v = 0xffff
	}
	return uint16(v), nil
}

type MockRead struct {
	Value uint16
	Err   error
}

// Mock replays Reads in order, then repeats the last one.
type Mock struct {
	mu    sync.Mutex
	Reads []MockRead
	Count int
}

func NewMock(values ...uint16) *Mock {
	m := &Mock{}
	for _, v := range values {
		m.Reads = append(m.Reads, MockRead{Value: v})
	}
	return m
}

func (m *Mock) ReadRaw() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Reads) == 0 {
		return 0, errors.New("mock adc: no reads configured")
	}
	i := m.Count
	if i >= len(m.Reads) {
		i = len(m.Reads) - 1
	}
	m.Count++
	r := m.Reads[i]
	return r.Value, r.Err
}
