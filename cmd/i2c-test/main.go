// i2c-test probes bus for devices or runs single raw transfer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fsae-telemetry/telenode/hardware/i2c"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
)

var log = log2.NewStderr(log2.LDebug)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	driver := cmdline.String("driver", "dev", "dev|periph")
	busNo := cmdline.Uint("bus", 1, "dev: /dev/i2c-N")
	name := cmdline.String("name", "", "periph: bus name, empty for first")
	scan := cmdline.Bool("scan", false, "probe addresses 0x03-0x77")
	addr := cmdline.Uint("addr", 0x3c, "device address")
	write := cmdline.String("write", "", "hex bytes to write")
	read := cmdline.Int("read", 0, "bytes to read")
	_ = cmdline.Parse(os.Args[1:])
	log.SetFlags(log2.LInteractiveFlags)

	var bus i2c.Bus
	var err error
	switch *driver {
	case "dev":
		bus = i2c.NewDevBus(byte(*busNo))
	case "periph":
		bus, err = i2c.NewPeriphBus(*name)
	default:
		err = errors.NotValidf("driver=%s", *driver)
	}
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	defer bus.Close()

	if *scan {
		fmt.Print(probe(bus))
		return
	}

	w := helpers.MustHex(strings.Replace(*write, " ", "", -1))
	r := make([]byte, *read)
	if err = bus.Tx(uint16(*addr), w, r); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	log.Infof("addr=%02x write=%x read=%x", *addr, w, r)
}

// probe reads one byte from each address and returns i2cdetect-like table.
func probe(bus i2c.Bus) string {
	b := strings.Builder{}
	b.WriteString("     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f\n")
	buf := make([]byte, 1)
	for row := 0; row < 0x80; row += 0x10 {
		fmt.Fprintf(&b, "%02x:", row)
		for a := row; a < row+0x10; a++ {
			switch {
			case a < 0x03 || a > 0x77:
				b.WriteString("   ")
			case bus.Tx(uint16(a), nil, buf) == nil:
				fmt.Fprintf(&b, " %02x", a)
			default:
				b.WriteString(" --")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
