// internal/frame/validate.go
package frame

import "fmt"

// DataOutOfRangeError rejects a frame whose field falls outside its
// documented physical range. The frame is unusable; values are never clamped.
type DataOutOfRangeError struct {
	Field string
	Value string
	Bound string
}

func (e *DataOutOfRangeError) Error() string {
	return fmt.Sprintf("%s %s out of range %s", e.Field, e.Value, e.Bound)
}

type floatRange struct {
	field    string
	get      func(*UpsStatus) float64
	min, max float64
}

type intRange struct {
	field    string
	get      func(*UpsStatus) int64
	min, max int64
}

const maxCounter = 1<<31 - 1

// Range tables, checked in order. The first violation wins.
var floatRanges = []floatRange{
	{"MCU voltage", func(s *UpsStatus) float64 { return s.MCUVoltage }, 2.4, 3.6},
	{"Pogo pin voltage", func(s *UpsStatus) float64 { return s.PogoPinVoltage }, 0, 5.5},
	{"Battery voltage", func(s *UpsStatus) float64 { return s.BatteryVoltage }, 0, 4.5},
	{"TypeC voltage", func(s *UpsStatus) float64 { return s.TypeCVoltage }, 0, 13.5},
	{"MicroUSB voltage", func(s *UpsStatus) float64 { return s.MicroUSBVoltage }, 0, 13.5},
}

var floatRangesAfterTemp = []floatRange{
	{"Battery full voltage", func(s *UpsStatus) float64 { return s.BatteryFullVoltage }, 0, 4.5},
	{"Battery empty voltage", func(s *UpsStatus) float64 { return s.BatteryEmptyVoltage }, 0, 4.5},
	{"Battery protection voltage", func(s *UpsStatus) float64 { return s.BatteryProtectionVoltage }, 0, 4.5},
}

var tempRange = intRange{"Battery temperature", func(s *UpsStatus) int64 { return int64(s.BatteryTemperature) }, -20, 65}

var intRanges = []intRange{
	{"Battery remaining", func(s *UpsStatus) int64 { return int64(s.BatteryRemaining) }, 0, 100},
	{"Sample period", func(s *UpsStatus) int64 { return int64(s.SamplePeriod) }, 1, 1440},
	{"Power status", func(s *UpsStatus) int64 { return int64(s.PowerStatus) }, 0, 1},
	{"Shutdown countdown", func(s *UpsStatus) int64 { return int64(s.ShutdownCountdown) }, 0, 255},
	{"Auto power on", func(s *UpsStatus) int64 { return int64(s.AutoPowerOn) }, 0, 1},
	{"Restart countdown", func(s *UpsStatus) int64 { return int64(s.RestartCountdown) }, 0, 255},
	{"Reset", func(s *UpsStatus) int64 { return int64(s.Reset) }, 0, 1},
	{"Accumulated running time", func(s *UpsStatus) int64 { return s.AccumulatedRunningTime }, 0, maxCounter},
	{"Accumulated charging time", func(s *UpsStatus) int64 { return s.AccumulatedChargingTime }, 0, maxCounter},
	{"Current running time", func(s *UpsStatus) int64 { return s.CurrentRunningTime }, 0, maxCounter},
}

// Validate checks every field of s against the register map ranges.
func Validate(s UpsStatus) error {
	for _, r := range floatRanges {
		if err := r.check(&s); err != nil {
			return err
		}
	}
	if err := tempRange.check(&s); err != nil {
		return err
	}
	for _, r := range floatRangesAfterTemp {
		if err := r.check(&s); err != nil {
			return err
		}
	}
	for _, r := range intRanges {
		if err := r.check(&s); err != nil {
			return err
		}
	}

	// sentinels: all-ones means unprogrammed
	if s.Version == unprogrammedVersion {
		return &DataOutOfRangeError{Field: "Version", Value: fmt.Sprintf("%d", s.Version), Bound: "!= 0xFFFF"}
	}
	if s.BatteryParameters == unprogrammedBatteryPar {
		return &DataOutOfRangeError{Field: "Battery parameters", Value: fmt.Sprintf("%d", s.BatteryParameters), Bound: "!= 0xFF"}
	}
	if s.SerialNumber == unprogrammedSerial {
		return &DataOutOfRangeError{Field: "Serial number", Value: s.SerialNumber, Bound: "!= " + unprogrammedSerial}
	}
	return nil
}

func (r floatRange) check(s *UpsStatus) error {
	v := r.get(s)
	if v < r.min || v > r.max {
		return &DataOutOfRangeError{
			Field: r.field,
			Value: fmt.Sprintf("%.2f", v),
			Bound: fmt.Sprintf("[%g, %g]", r.min, r.max),
		}
	}
	return nil
}

func (r intRange) check(s *UpsStatus) error {
	v := r.get(s)
	if v < r.min || v > r.max {
		return &DataOutOfRangeError{
			Field: r.field,
			Value: fmt.Sprintf("%d", v),
			Bound: fmt.Sprintf("[%d, %d]", r.min, r.max),
		}
	}
	return nil
}
