package node

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/fsae-telemetry/telenode/hardware/adc"
	"github.com/fsae-telemetry/telenode/hardware/display"
	"github.com/fsae-telemetry/telenode/hardware/i2c"
	"github.com/fsae-telemetry/telenode/hardware/led"
	"github.com/fsae-telemetry/telenode/hardware/ssd1306"
	"github.com/fsae-telemetry/telenode/hardware/wifi"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
)

const (
	DefaultWidth  = 128
	DefaultHeight = 64
)

// Hardware devices are opened lazily from config, once.
// Tests may assign fields before first use.
type Hardware struct {
	I2C struct {
		once
		Bus i2c.Bus
	}
	Sensor struct {
		once
		Source adc.Source
	}
	Display struct {
		once
		Surface display.Surface
		Frame   *display.Frame
		dev     *ssd1306.Device
	}
	LED struct {
		once
		RGB led.RGB
	}
	Wifi wifi.Joiner
}

func (n *Node) I2C() (i2c.Bus, error) {
	x := &n.Hardware.I2C
	_ = x.do(func() error {
		if x.Bus != nil { // testing mode
			return nil
		}
		cfg := &n.Config.Hardware.I2C
		switch cfg.Driver {
		case "", "dev":
			x.Bus = i2c.NewDevBus(byte(cfg.Bus))
			return nil

		case "periph":
			bus, err := i2c.NewPeriphBus(cfg.Name)
			if err != nil {
				return errors.Annotatef(err, "config: hardware.i2c=%#v", cfg)
			}
			x.Bus = bus
			return nil

		default:
			return fmt.Errorf("config: unknown hardware.i2c.driver=\"%s\" valid: dev, periph", cfg.Driver)
		}
	})
	return x.Bus, x.err
}

func (n *Node) Sensor() (adc.Source, error) {
	x := &n.Hardware.Sensor
	_ = x.do(func() error {
		if x.Source != nil { // testing mode
			return nil
		}
		cfg := &n.Config.Hardware.Sensor
		switch cfg.Driver {
		case "", "iio":
			x.Source = adc.NewIIO(cfg.IIOPath)
			return nil

		case "ads1115":
			bus, err := n.I2C()
			if err != nil {
				return errors.Annotate(err, "Sensor() driver=ads1115")
			}
			ads, err := adc.NewADS1115(bus, uint16(cfg.ADSAddress), cfg.ADSChannel)
			if err != nil {
				return errors.Annotatef(err, "config: hardware.sensor=%#v", cfg)
			}
			x.Source = ads
			return nil

		case "sim":
			x.Source = adc.NewSim(uint16(cfg.SimCenter), uint16(cfg.SimNoise), n.Clock.Now().UnixNano())
			return nil

		default:
			return fmt.Errorf("config: unknown hardware.sensor.driver=\"%s\" valid: iio, ads1115, sim", cfg.Driver)
		}
	})
	return x.Source, x.err
}

func (n *Node) Frame() (*display.Frame, error) {
	x := &n.Hardware.Display
	_ = x.do(func() error {
		cfg := &n.Config.Hardware.Display
		size := image.Point{X: cfg.Width, Y: cfg.Height}
		if size.X <= 0 {
			size.X = DefaultWidth
		}
		if size.Y <= 0 {
			size.Y = DefaultHeight
		}
		if x.Frame != nil { // testing mode
			return nil
		}
		if x.Surface == nil {
			switch cfg.Driver {
			case "", "ssd1306":
				bus, err := n.I2C()
				if err != nil {
					return errors.Annotate(err, "Frame() driver=ssd1306")
				}
				x.dev = ssd1306.New(bus, uint16(cfg.Address), size.X, size.Y)
				if err := x.dev.Init(); err != nil {
					return errors.Annotatef(err, "ssd1306 init config=%#v", cfg)
				}
				x.Surface = x.dev

			case "mock":
				x.Surface = &display.MockSurface{}

			default:
				return fmt.Errorf("config: unknown hardware.display.driver=\"%s\" valid: ssd1306, mock", cfg.Driver)
			}
		}
		x.Frame = display.NewFrame(size, x.Surface)
		return nil
	})
	return x.Frame, x.err
}

func (n *Node) LED() (led.RGB, error) {
	x := &n.Hardware.LED
	_ = x.do(func() error {
		if x.RGB != nil { // testing mode
			return x.RGB.Set(false, false, false)
		}
		cfg := &n.Config.Hardware.LED
		if !cfg.Enable {
			n.Log.Debugf("status led is disabled")
			x.RGB = led.Noop{}
			return nil
		}
		pins := led.PinMap{Red: uint32(cfg.Red), Green: uint32(cfg.Green), Blue: uint32(cfg.Blue)}
		l, err := led.Open(cfg.PinChip, pins)
		if err != nil {
			return errors.Annotatef(err, "config: hardware.led=%#v", cfg)
		}
		x.RGB = l
		return nil
	})
	return x.RGB, x.err
}

func (n *Node) Joiner() wifi.Joiner {
	if n.Hardware.Wifi != nil {
		return n.Hardware.Wifi
	}
	cfg := &n.Config.Network.Wifi
	switch cfg.Driver {
	case "nmcli":
		n.Hardware.Wifi = wifi.NewNetworkManager(n.Log.Clone(log2.LInfo), cfg.Interface)
	default:
		n.Hardware.Wifi = wifi.None{}
	}
	return n.Hardware.Wifi
}

func (n *Node) closeHardware() error {
	errs := make([]error, 0, 4)
	if x := &n.Hardware.LED; x.done() && x.RGB != nil {
		_ = x.RGB.Set(false, false, false)
		errs = append(errs, x.RGB.Close())
	}
	if x := &n.Hardware.Display; x.done() && x.dev != nil {
		errs = append(errs, x.dev.Off())
	}
	if x := &n.Hardware.I2C; x.done() && x.Bus != nil {
		errs = append(errs, x.Bus.Close())
	}
	return errors.Annotate(helpers.FoldErrors(errs), "close hardware")
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
