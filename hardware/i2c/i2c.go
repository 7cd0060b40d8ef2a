// Package i2c talks to devices on a Linux I2C bus.
package i2c

// Thanks to
// https://github.com/kidoman/embd and https://bitbucket.org/gmcbay/i2c

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	// as defined in /usr/include/linux/i2c-dev.h
	I2C_SLAVE = 0x0703 /* Use this slave address */
	I2C_RDWR  = 0x0707 /* Combined R/W transfer (one STOP only) */

	// i2c_msg flags
	// as defined in /usr/include/linux/i2c.h
	I2C_M_RD = 0x0001 /* read data, from slave to master */
)

// Bus is one I2C bus. Tx signature matches tinygo.org/x/drivers.I2C.
// Either w or r may be empty, not both.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
	Close() error
}

type i2c_msg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2c_rdwr_ioctl_data struct {
	msgs uintptr
	nmsg uint32
}

// Combined transfers through /dev/i2c-N with I2C_RDWR ioctl.
type devBus struct {
	path string
	file *os.File
	lk   sync.Mutex
}

func NewDevBus(busNo byte) Bus {
	return &devBus{path: fmt.Sprintf("/dev/i2c-%d", busNo)}
}

func (b *devBus) init() error {
	if b.file != nil {
		return nil
	}
	f, err := os.OpenFile(b.path, os.O_RDWR, os.ModeExclusive)
	if err != nil {
		return errors.Annotatef(err, "i2c open %s", b.path)
	}
	b.file = f
	return nil
}

func (b *devBus) Tx(addr uint16, w, r []byte) error {
	b.lk.Lock()
	defer b.lk.Unlock()

	nmsg := uint32(0)
	msgs := [2]i2c_msg{}
	if len(w) != 0 {
		msgs[nmsg] = i2c_msg{
			addr: addr, flags: 0,
			buf: uintptr(unsafe.Pointer(&w[0])), len: uint16(len(w)),
		}
		nmsg++
	}
	if len(r) != 0 {
		msgs[nmsg] = i2c_msg{
			addr: addr, flags: I2C_M_RD,
			buf: uintptr(unsafe.Pointer(&r[0])), len: uint16(len(r)),
		}
		nmsg++
	}
	if nmsg == 0 {
		return errors.Errorf("i2c Tx addr=%02x both w=r=empty nothing to do", addr)
	}

	if err := b.init(); err != nil {
		return err
	}
	rdwr := i2c_rdwr_ioctl_data{
		msgs: uintptr(unsafe.Pointer(&msgs[0])),
		nmsg: nmsg,
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		b.file.Fd(), uintptr(I2C_RDWR), uintptr(unsafe.Pointer(&rdwr)))
	if errno != 0 {
		return errors.Annotatef(errno, "i2c Tx addr=%02x", addr)
	}
	return nil
}

func (b *devBus) Close() error {
	b.lk.Lock()
	defer b.lk.Unlock()

	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}
