//go:build nrf52840

package platform

import (
	"machine"

	"tinygo.org/x/drivers"
)

// I2C configures TWI0 on the board's default pins at 400 kHz. The bus is
// returned even when Configure fails so the driver can report bus errors.
func I2C() (drivers.I2C, error) {
	bus := machine.I2C0
	err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.SDA_PIN,
		SCL:       machine.SCL_PIN,
	})
	return bus, err
}

// LED drives the board's first user LED.
type LED struct{ p machine.Pin }

func NewLED() *LED {
	p := machine.LED
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &LED{p: p}
}

func (l *LED) Set(on bool) { l.p.Set(on) }
