// Package sampler converts averaged raw ADC samples into temperature reading.
package sampler

import (
	"time"

	"github.com/fsae-telemetry/telenode/hardware/adc"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/juju/errors"
)

// Reading is temperature in degrees Celsius, never above Config.Max.
type Reading float32

const (
	DefaultSamples  = 10
	DefaultSettle   = 100 * time.Microsecond
	DefaultRefVolts = 3.3
	DefaultBits     = 12
	DefaultScale    = 100.0
	DefaultMax      = 150.0
)

type Config struct {
	Samples  int
	Settle   time.Duration
	RefVolts float32
	Bits     uint
	Scale    float32
	Offset   float32
	Max      float32
}

func DefaultConfig() Config {
	return Config{
		Samples:  DefaultSamples,
		Settle:   DefaultSettle,
		RefVolts: DefaultRefVolts,
		Bits:     DefaultBits,
		Scale:    DefaultScale,
		Max:      DefaultMax,
	}
}

type Sampler struct {
	c     Config
	src   adc.Source
	sleep func(time.Duration)
}

// New fills zero config fields with defaults. Offset zero is a valid value.
func New(src adc.Source, c Config) *Sampler {
	d := DefaultConfig()
	if c.Samples <= 0 {
		c.Samples = d.Samples
	}
	if c.Settle == 0 {
		c.Settle = d.Settle
	}
	if c.RefVolts == 0 {
		c.RefVolts = d.RefVolts
	}
	if c.Bits == 0 || c.Bits > 16 {
		c.Bits = d.Bits
	}
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
	if c.Max == 0 {
		c.Max = d.Max
	}
	return &Sampler{c: c, src: src, sleep: time.Sleep}
}

func (s *Sampler) Config() Config { return s.c }

// Sample never fails, read errors are folded into result of SampleErr.
func (s *Sampler) Sample() Reading {
	r, _ := s.SampleErr()
	return r
}

func (s *Sampler) SampleErr() (Reading, error) {
	mask := uint32(1)<<s.c.Bits - 1
	var sum uint32
	var errs []error
	for i := 0; i < s.c.Samples; i++ {
		raw, err := s.src.ReadRaw()
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "sample %d", i))
		}
		v := uint32(raw)
		if v > mask { // over range reads as full scale
			v = mask
		}
		sum += v
		if s.c.Settle > 0 {
			s.sleep(s.c.Settle)
		}
	}
	mean := sum / uint32(s.c.Samples)
	return s.Convert(mean), helpers.FoldErrors(errs)
}

// Convert maps averaged raw value to clamped reading.
func (s *Sampler) Convert(mean uint32) Reading {
	voltage := float32(mean) * (s.c.RefVolts / float32(uint32(1)<<s.c.Bits))
	t := voltage*s.c.Scale + s.c.Offset
	if t > s.c.Max {
		t = s.c.Max
	}
	return Reading(t)
}
