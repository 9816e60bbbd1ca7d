//go:build linux && !tinygo

package platform

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ioctl request selecting the target address on an i2c-dev node.
const i2cSlave = 0x0703

// DevI2C is a drivers.I2C backed by a Linux /dev/i2c-N node. A transaction is
// a write of w followed by a read into r; either may be empty.
type DevI2C struct {
	mu   sync.Mutex
	f    *os.File
	addr uint16
	sel  bool
}

func OpenI2C(path string) (*DevI2C, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &DevI2C{f: f}, nil
}

func (d *DevI2C) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.sel || d.addr != addr {
		if err := unix.IoctlSetInt(int(d.f.Fd()), i2cSlave, int(addr)); err != nil {
			return err
		}
		d.addr, d.sel = addr, true
	}
	if len(w) > 0 {
		if _, err := d.f.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if _, err := d.f.Read(r); err != nil {
			return err
		}
	}
	return nil
}

func (d *DevI2C) Close() error { return d.f.Close() }
