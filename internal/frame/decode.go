// internal/frame/decode.go
package frame

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode converts a full-status register frame into a validated UpsStatus.
// No IO. No side effects. Any out-of-range field rejects the whole frame.
func Decode(frame []byte) (UpsStatus, error) {
	if len(frame) < FrameSize {
		return UpsStatus{}, &DataOutOfRangeError{
			Field: "frame length",
			Value: fmt.Sprintf("%d", len(frame)),
			Bound: fmt.Sprintf("[%d, %d]", FrameSize, FrameSize),
		}
	}

	s := UpsStatus{
		MCUVoltage:               millivolts(frame, RegMCUVoltage),
		PogoPinVoltage:           millivolts(frame, RegPogoPinVoltage),
		BatteryVoltage:           millivolts(frame, RegBatteryVoltage),
		TypeCVoltage:             millivolts(frame, RegTypeCVoltage),
		MicroUSBVoltage:          millivolts(frame, RegMicroUSBVoltage),
		BatteryTemperature:       temperature(frame),
		BatteryFullVoltage:       millivolts(frame, RegBatteryFullVoltage),
		BatteryEmptyVoltage:      millivolts(frame, RegBatteryEmptyVoltage),
		BatteryProtectionVoltage: millivolts(frame, RegBatteryProtectionVoltage),
		BatteryRemaining:         int(u16(frame, RegBatteryRemaining)),
		SamplePeriod:             int(u16(frame, RegSamplePeriod)),
		PowerStatus:              int(frame[RegPowerStatus]),
		ShutdownCountdown:        int(frame[RegShutdownCountdown]),
		AutoPowerOn:              int(frame[RegAutoPowerOn]),
		RestartCountdown:         int(frame[RegRestartCountdown]),
		Reset:                    int(frame[RegReset]),
		AccumulatedRunningTime:   int64(u32(frame, RegAccumulatedRunning)),
		AccumulatedChargingTime:  int64(u32(frame, RegAccumulatedCharging)),
		CurrentRunningTime:       int64(u32(frame, RegCurrentRunning)),
		Version:                  int(u16(frame, RegVersion)),
		BatteryParameters:        int(frame[RegBatteryParameters]),
		SerialNumber: fmt.Sprintf("%08X-%08X-%08X",
			u32(frame, RegSerial0), u32(frame, RegSerial1), u32(frame, RegSerial2)),
	}

	if err := Validate(s); err != nil {
		return UpsStatus{}, err
	}
	return s, nil
}

// DecodePowerInput decodes the 4-byte read starting at PowerInputRegister.
func DecodePowerInput(buf []byte) (PowerInput, error) {
	if len(buf) < PowerInputSize {
		return PowerInput{}, &DataOutOfRangeError{
			Field: "power input length",
			Value: fmt.Sprintf("%d", len(buf)),
			Bound: fmt.Sprintf("[%d, %d]", PowerInputSize, PowerInputSize),
		}
	}
	return PowerInput{
		TypeCVoltage:    millivolts(buf, RegTypeCVoltage-PowerInputRegister),
		MicroUSBVoltage: millivolts(buf, RegMicroUSBVoltage-PowerInputRegister),
	}, nil
}

// ---- helpers (little-endian, low byte at lower address) ----

func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off : off+2]) }

func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off : off+4]) }

// temperature is a signed word. The all-ones word is kept unsigned so an
// unprogrammed or torn read fails the range check instead of passing as -1.
func temperature(b []byte) int {
	raw := u16(b, RegBatteryTemperature)
	if raw == unprogrammedTemperature {
		return int(raw)
	}
	return int(int16(raw))
}

func millivolts(b []byte, off int) float64 {
	return math.Round(float64(u16(b, off))/10) / 100
}
