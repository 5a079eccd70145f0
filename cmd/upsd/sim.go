// cmd/upsd/sim.go
package main

import (
	"math"

	"tinygo.org/x/drivers/ina219"

	"github.com/tamzrod/upsplus-daemon/internal/bus"
	"github.com/tamzrod/upsplus-daemon/internal/config"
	"github.com/tamzrod/upsplus-daemon/internal/frame"
)

// newSimBus returns an in-memory bus with a healthy UPS on TypeC input and
// both sense chips reporting a charging battery.
func newSimBus(d config.DeviceConfig) (*bus.Mem, error) {
	m := bus.NewMem()

	nominal := frame.Nominal()
	raw, err := frame.Encode(nominal)
	if err != nil {
		return nil, err
	}
	m.Load(uint8(d.UPSAddress), 0, raw)

	loadINA219(m, uint8(d.OutputAddress), d.OutputShuntOhms, 5.12, 0.8)
	loadINA219(m, uint8(d.BatteryAddress), d.BatteryShuntOhms, nominal.BatteryVoltage, 0.2)
	return m, nil
}

// loadINA219 seeds raw bus (4 mV LSB, shifted 3) and shunt (10 uV LSB)
// words for the given reading.
func loadINA219(m *bus.Mem, addr uint8, shuntOhms, volts, amps float64) {
	m.LoadWord(addr, ina219.RegBusVoltage, uint16(math.Round(volts/0.004))<<3)
	m.LoadWord(addr, ina219.RegShuntVoltage, uint16(int16(math.Round(amps*shuntOhms/0.00001))))
}
