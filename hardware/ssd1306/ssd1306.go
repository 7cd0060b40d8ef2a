// Package ssd1306 drives 128x64 SSD1306 OLED controller over I2C.
package ssd1306

import (
	"github.com/fsae-telemetry/telenode/hardware/display"
	"github.com/juju/errors"
)

const DefaultAddress = 0x3c

// control byte prefix
const (
	ctrlCommand = 0x80
	ctrlData    = 0x40
)

const (
	cmdSetContrast      = 0x81
	cmdEntireOnResume   = 0xa4
	cmdNormalDisplay    = 0xa6
	cmdDisplayOff       = 0xae
	cmdDisplayOn        = 0xaf
	cmdSetMemMode       = 0x20
	cmdSetColumnAddr    = 0x21
	cmdSetPageAddr      = 0x22
	cmdDeactivateScroll = 0x2e
	cmdSetStartLine     = 0x40
	cmdSegRemap         = 0xa0
	cmdSetMuxRatio      = 0xa8
	cmdComScanDec       = 0xc8
	cmdSetDisplayOffset = 0xd3
	cmdSetComPins       = 0xda
	cmdSetClockDiv      = 0xd5
	cmdSetPrecharge     = 0xd9
	cmdSetVcomDeselect  = 0xdb
	cmdChargePump       = 0x8d
)

// Tx matches hardware/i2c.Bus and tinygo drivers.I2C.
type Txer interface {
	Tx(addr uint16, w, r []byte) error
}

type Device struct {
	bus     Txer
	addr    uint16
	width   int
	height  int
	scratch []byte
}

var _ display.Surface = &Device{}

func New(bus Txer, addr uint16, width, height int) *Device {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Device{
		bus:     bus,
		addr:    addr,
		width:   width,
		height:  height,
		scratch: make([]byte, 1+width*((height+7)/8)),
	}
}

func (d *Device) Init() error {
	comPins := byte(0x12)
	if d.height == 32 {
		comPins = 0x02
	}
	seq := []byte{
		cmdDisplayOff,
		cmdSetMemMode, 0x00, // horizontal addressing
		cmdSetStartLine | 0x00,
		cmdSegRemap | 0x01,
		cmdSetMuxRatio, byte(d.height - 1),
		cmdComScanDec,
		cmdSetDisplayOffset, 0x00,
		cmdSetComPins, comPins,
		cmdSetClockDiv, 0x80,
		cmdSetPrecharge, 0xf1,
		cmdSetVcomDeselect, 0x30,
		cmdSetContrast, 0xff,
		cmdEntireOnResume,
		cmdNormalDisplay,
		cmdChargePump, 0x14,
		cmdDeactivateScroll,
		cmdDisplayOn,
	}
	return errors.Annotate(d.Command(seq...), "ssd1306 init")
}

// Command sends each byte with command control prefix.
func (d *Device) Command(cmds ...byte) error {
	var w [2]byte
	w[0] = ctrlCommand
	for _, c := range cmds {
		w[1] = c
		if err := d.bus.Tx(d.addr, w[:], nil); err != nil {
			return errors.Annotatef(err, "command=%02x", c)
		}
	}
	return nil
}

// Submit sets column/page window and writes buf in one data transfer.
func (d *Device) Submit(buf []byte, area display.Area) error {
	cols := int(area.EndColumn) - int(area.StartColumn) + 1
	pages := int(area.EndPage) - int(area.StartPage) + 1
	if cols <= 0 || pages <= 0 || int(area.EndColumn) >= d.width || int(area.EndPage) >= (d.height+7)/8 {
		return errors.NotValidf("ssd1306 area=%v", area)
	}
	if len(buf) < cols*pages {
		return errors.Errorf("ssd1306 buffer len=%d area needs %d", len(buf), cols*pages)
	}
	if err := d.Command(
		cmdSetColumnAddr, area.StartColumn, area.EndColumn,
		cmdSetPageAddr, area.StartPage, area.EndPage,
	); err != nil {
		return errors.Annotate(err, "ssd1306 submit")
	}
	w := d.scratch[:1+cols*pages]
	w[0] = ctrlData
	copy(w[1:], buf[:cols*pages])
	return errors.Annotate(d.bus.Tx(d.addr, w, nil), "ssd1306 data")
}

func (d *Device) Off() error { return d.Command(cmdDisplayOff) }
