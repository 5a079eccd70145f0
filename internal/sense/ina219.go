// internal/sense/ina219.go
package sense

import (
	"errors"
	"fmt"
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ina219"
)

// Reading is one voltage/current/power sample of a sense channel.
// Current is signed: negative means flow opposite the shunt orientation.
// Power is a magnitude, as the chip's own power register reports it.
type Reading struct {
	Voltage float64 `json:"voltage"` // V
	Current float64 `json:"current"` // A
	Power   float64 `json:"power"`   // W
}

// Reader is what the poller needs from a sense channel.
type Reader interface {
	Read() (Reading, error)
}

var ErrOverflow = errors.New("ina219: math overflow")

// INA219 is a bus-voltage / shunt-voltage monitor on a register-pointer bus.
//
// The chip's current and power registers depend on a calibration that
// assumes a 0.1 ohm shunt. The UPS boards use milliohm shunts, so current
// is derived from the shunt voltage here and the calibrated registers are
// never read.
type INA219 struct {
	dev       ina219.Device
	shuntOhms float64
}

func NewINA219(bus drivers.I2C, addr uint16, shuntOhms float64) (*INA219, error) {
	if bus == nil {
		return nil, errors.New("ina219: bus required")
	}
	if shuntOhms <= 0 {
		return nil, fmt.Errorf("ina219: shunt %.5f ohm must be > 0", shuntOhms)
	}

	// 32V range, /8 gain (320mV), 12-bit ADCs, continuous
	dev := ina219.New(bus)
	dev.Address = addr
	dev.SetConfig(ina219.Config32V2A)

	return &INA219{dev: dev, shuntOhms: shuntOhms}, nil
}

// Configure programs the measurement configuration and verifies it.
func (d *INA219) Configure() error {
	if err := d.dev.Configure(); err != nil {
		return fmt.Errorf("ina219 0x%02x: configure: %w", d.dev.Address, err)
	}
	return nil
}

func (d *INA219) Read() (Reading, error) {
	mv, err := d.dev.BusVoltage()
	if err != nil {
		var ovf ina219.ErrOverflow
		if errors.As(err, &ovf) {
			return Reading{}, fmt.Errorf("ina219 0x%02x: %w", d.dev.Address, ErrOverflow)
		}
		return Reading{}, fmt.Errorf("ina219 0x%02x: read bus voltage: %w", d.dev.Address, err)
	}
	shunt, err := d.dev.ShuntVoltage()
	if err != nil {
		return Reading{}, fmt.Errorf("ina219 0x%02x: read shunt voltage: %w", d.dev.Address, err)
	}

	volts := float64(mv) / 1000
	// shunt LSB is 10 uV
	amps := float64(shunt) * 0.00001 / d.shuntOhms

	return Reading{
		Voltage: round(volts, 2),
		Current: round(amps, 3),
		Power:   round(math.Abs(volts*amps), 3),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
