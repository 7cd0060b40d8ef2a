package adc

import (
	"time"

	"github.com/juju/errors"
)

const (
	ADS1115DefaultAddress = 0x48
	// Positive half of 16 bit signed result at gain one.
	ADS1115Bits     = 15
	ADS1115RefVolts = 4.096
)

const (
	adsRegConversion = 0x00
	adsRegConfig     = 0x01

	adsOsSingle   uint16 = 0x8000
	adsModeSingle uint16 = 0x0100
	adsMuxSingle0 uint16 = 0x4000
	adsGainOne    uint16 = 0x0200 // +/- 4.096V
	adsRate860    uint16 = 0x00e0
	adsQueueNone  uint16 = 0x0003

	adsConvTimeout  = 50 * time.Millisecond
	adsConvPollWait = 200 * time.Microsecond
)

type Txer interface {
	Tx(addr uint16, w, r []byte) error
}

// ADS1115 single-shot, single-ended conversion on one channel.
// Negative results are reported as 0, so useful resolution is 15 bits.
type ADS1115 struct {
	bus     Txer
	addr    uint16
	channel int
	sleep   func(time.Duration)
	now     func() time.Time
}

func NewADS1115(bus Txer, addr uint16, channel int) (*ADS1115, error) {
	if channel < 0 || channel > 3 {
		return nil, errors.NotValidf("ads1115 channel=%d", channel)
	}
	if addr == 0 {
		addr = ADS1115DefaultAddress
	}
	return &ADS1115{bus: bus, addr: addr, channel: channel, sleep: time.Sleep, now: time.Now}, nil
}

func (a *ADS1115) config() uint16 {
	mux := adsMuxSingle0 + uint16(a.channel)<<12
	return adsOsSingle | adsModeSingle | adsQueueNone | mux | adsGainOne | adsRate860
}

func (a *ADS1115) ReadRaw() (uint16, error) {
	cfg := a.config()
	if err := a.bus.Tx(a.addr, []byte{adsRegConfig, byte(cfg >> 8), byte(cfg)}, nil); err != nil {
		return 0, errors.Annotate(err, "ads1115 write config")
	}

	b := make([]byte, 2)
	deadline := a.now().Add(adsConvTimeout)
	for {
		if err := a.bus.Tx(a.addr, []byte{adsRegConfig}, b); err != nil {
			return 0, errors.Annotate(err, "ads1115 read config")
		}
		if (uint16(b[0])<<8|uint16(b[1]))&adsOsSingle != 0 {
			break
		}
		if a.now().After(deadline) {
			return 0, errors.Timeoutf("ads1115 conversion")
		}
		a.sleep(adsConvPollWait)
	}

	if err := a.bus.Tx(a.addr, []byte{adsRegConversion}, b); err != nil {
		return 0, errors.Annotate(err, "ads1115 read conversion")
	}
	raw := int16(uint16(b[0])<<8 | uint16(b[1]))
	if raw < 0 {
		return 0, nil
	}
	return uint16(raw), nil
}
