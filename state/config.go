package state

import (
	"path/filepath"
	"time"

	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Node     NodeConfig     `hcl:"node"`
	Hardware HardwareConfig `hcl:"hardware"`
	Network  struct {
		Wifi WifiConfig `hcl:"wifi"`
	} `hcl:"network"`
	Tele TeleConfig `hcl:"tele"`
}

type NodeConfig struct {
	ID             string `hcl:"id"`
	Listen         string `hcl:"listen"`
	TickMsec       int    `hcl:"tick_ms"`
	IdleTimeoutSec int    `hcl:"idle_timeout_sec"`
	ReplyTimeoutMs int    `hcl:"reply_timeout_ms"`
	ReadLimit      int    `hcl:"read_limit"`
	InitialMessage string `hcl:"initial_message"`
	LogDebug       bool   `hcl:"log_debug"`
}

type HardwareConfig struct {
	I2C struct {
		Driver string `hcl:"driver"` // dev, periph
		Bus    int    `hcl:"bus"`    // dev: /dev/i2c-N
		Name   string `hcl:"name"`   // periph registry name
	} `hcl:"i2c"`
	Sensor  SensorConfig  `hcl:"sensor"`
	Display DisplayConfig `hcl:"display"`
	LED     struct {
		Enable  bool   `hcl:"enable"`
		PinChip string `hcl:"pin_chip"`
		Red     int    `hcl:"red"`
		Green   int    `hcl:"green"`
		Blue    int    `hcl:"blue"`
	} `hcl:"led"`
}

type SensorConfig struct {
	Driver     string  `hcl:"driver"` // iio, ads1115, sim
	IIOPath    string  `hcl:"iio_path"`
	ADSAddress int     `hcl:"ads_address"`
	ADSChannel int     `hcl:"ads_channel"`
	SimCenter  int     `hcl:"sim_center"`
	SimNoise   int     `hcl:"sim_noise"`
	Samples    int     `hcl:"samples"`
	SettleUs   int     `hcl:"settle_us"`
	RefVolts   float64 `hcl:"ref_volts"`
	Bits       int     `hcl:"bits"`
	Scale      float64 `hcl:"scale"`
	Offset     float64 `hcl:"offset"`
	Max        float64 `hcl:"max"`
	LogDebug   bool    `hcl:"log_debug"`
}

type DisplayConfig struct {
	Driver    string `hcl:"driver"` // ssd1306, mock
	Address   int    `hcl:"address"`
	Width     int    `hcl:"width"`
	Height    int    `hcl:"height"`
	SplashSec int    `hcl:"splash_sec"`
}

type WifiConfig struct {
	Driver     string `hcl:"driver"` // none, nmcli
	SSID       string `hcl:"ssid"`
	Password   string `hcl:"password"`
	Interface  string `hcl:"interface"`
	TimeoutSec int    `hcl:"timeout_sec"`
}

type TeleConfig struct {
	Enable         bool   `hcl:"enable"`
	MqttBroker     string `hcl:"mqtt_broker"`
	MqttUser       string `hcl:"mqtt_user"`
	MqttPassword   string `hcl:"mqtt_password"`
	KeepaliveSec   int    `hcl:"keepalive_sec"`
	PingTimeoutSec int    `hcl:"ping_timeout_sec"`
	IntervalSec    int    `hcl:"interval_sec"`
	LogDebug       bool   `hcl:"log_debug"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

const DefaultInitialMessage = "Waiting for data..."

func (c *NodeConfig) Tick() time.Duration {
	return helpers.IntMillisecondDefault(c.TickMsec, time.Second)
}
func (c *NodeConfig) IdleTimeout() time.Duration {
	return helpers.IntSecondDefault(c.IdleTimeoutSec, 30*time.Second)
}
func (c *NodeConfig) ReplyTimeout() time.Duration {
	return helpers.IntMillisecondDefault(c.ReplyTimeoutMs, 100*time.Millisecond)
}
func (c *NodeConfig) Initial() string {
	if c.InitialMessage == "" {
		return DefaultInitialMessage
	}
	return c.InitialMessage
}
func (c *NodeConfig) NodeID() string {
	if c.ID == "" {
		return "telenode"
	}
	return c.ID
}

func (c *WifiConfig) Timeout() time.Duration {
	return helpers.IntSecondDefault(c.TimeoutSec, 10*time.Second)
}

func (c *TeleConfig) Interval() time.Duration {
	return helpers.IntSecondDefault(c.IntervalSec, 10*time.Second)
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func (c *Config) validate() error {
	errs := make([]error, 0, 4)
	switch c.Hardware.I2C.Driver {
	case "", "dev", "periph":
	default:
		errs = append(errs, errors.NotValidf("config: hardware.i2c.driver=%s valid: dev, periph", c.Hardware.I2C.Driver))
	}
	switch c.Hardware.Sensor.Driver {
	case "", "iio", "ads1115", "sim":
	default:
		errs = append(errs, errors.NotValidf("config: hardware.sensor.driver=%s valid: iio, ads1115, sim", c.Hardware.Sensor.Driver))
	}
	sc := &c.Hardware.Sensor
	if sc.Bits < 0 || sc.Bits > 16 {
		errs = append(errs, errors.NotValidf("config: hardware.sensor.bits=%d valid: 1..16", sc.Bits))
	}
	if sc.Driver == "ads1115" && sc.Bits != 0 && sc.Bits != 15 {
		errs = append(errs, errors.NotValidf("config: hardware.sensor.bits=%d driver=ads1115 valid: 15", sc.Bits))
	}
	if c.Node.ReadLimit < 0 {
		errs = append(errs, errors.NotValidf("config: node.read_limit=%d", c.Node.ReadLimit))
	}
	switch c.Hardware.Display.Driver {
	case "", "ssd1306", "mock":
	default:
		errs = append(errs, errors.NotValidf("config: hardware.display.driver=%s valid: ssd1306, mock", c.Hardware.Display.Driver))
	}
	switch c.Network.Wifi.Driver {
	case "", "none", "nmcli":
	default:
		errs = append(errs, errors.NotValidf("config: network.wifi.driver=%s valid: none, nmcli", c.Network.Wifi.Driver))
	}
	if c.Network.Wifi.Driver == "nmcli" && c.Network.Wifi.SSID == "" {
		errs = append(errs, errors.NotValidf("config: network.wifi.ssid empty"))
	}
	if c.Tele.Enable && c.Tele.MqttBroker == "" {
		errs = append(errs, errors.NotValidf("config: tele.enable=true mqtt_broker empty"))
	}
	return helpers.FoldErrors(errs)
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, err
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if len(errs) == 0 {
		errs = append(errs, c.validate())
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
