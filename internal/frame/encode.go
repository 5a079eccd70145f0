// internal/frame/encode.go
package frame

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode converts a UpsStatus back into a full register frame.
// Layout is register-map locked. Sense channels are not part of the frame.
// Used by the simulator backend and by tests.
func Encode(s UpsStatus) ([]byte, error) {
	b := make([]byte, FrameSize)

	putMillivolts(b, RegMCUVoltage, s.MCUVoltage)
	putMillivolts(b, RegPogoPinVoltage, s.PogoPinVoltage)
	putMillivolts(b, RegBatteryVoltage, s.BatteryVoltage)
	putMillivolts(b, RegTypeCVoltage, s.TypeCVoltage)
	putMillivolts(b, RegMicroUSBVoltage, s.MicroUSBVoltage)
	binary.LittleEndian.PutUint16(b[RegBatteryTemperature:], uint16(int16(s.BatteryTemperature)))
	putMillivolts(b, RegBatteryFullVoltage, s.BatteryFullVoltage)
	putMillivolts(b, RegBatteryEmptyVoltage, s.BatteryEmptyVoltage)
	putMillivolts(b, RegBatteryProtectionVoltage, s.BatteryProtectionVoltage)
	binary.LittleEndian.PutUint16(b[RegBatteryRemaining:], uint16(s.BatteryRemaining))
	binary.LittleEndian.PutUint16(b[RegSamplePeriod:], uint16(s.SamplePeriod))
	b[RegPowerStatus] = byte(s.PowerStatus)
	b[RegShutdownCountdown] = byte(s.ShutdownCountdown)
	b[RegAutoPowerOn] = byte(s.AutoPowerOn)
	b[RegRestartCountdown] = byte(s.RestartCountdown)
	b[RegReset] = byte(s.Reset)
	binary.LittleEndian.PutUint32(b[RegAccumulatedRunning:], uint32(s.AccumulatedRunningTime))
	binary.LittleEndian.PutUint32(b[RegAccumulatedCharging:], uint32(s.AccumulatedChargingTime))
	binary.LittleEndian.PutUint32(b[RegCurrentRunning:], uint32(s.CurrentRunningTime))
	binary.LittleEndian.PutUint16(b[RegVersion:], uint16(s.Version))
	b[RegBatteryParameters] = byte(s.BatteryParameters)

	var serial [3]uint32
	if _, err := fmt.Sscanf(s.SerialNumber, "%08X-%08X-%08X", &serial[0], &serial[1], &serial[2]); err != nil {
		return nil, fmt.Errorf("frame: serial number %q: %w", s.SerialNumber, err)
	}
	binary.LittleEndian.PutUint32(b[RegSerial0:], serial[0])
	binary.LittleEndian.PutUint32(b[RegSerial1:], serial[1])
	binary.LittleEndian.PutUint32(b[RegSerial2:], serial[2])

	return b, nil
}

// MillivoltsLE returns the 2-byte little-endian register value for volts.
func MillivoltsLE(volts float64) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(math.Round(volts*1000)))
	return b
}

func putMillivolts(b []byte, off int, volts float64) {
	copy(b[off:off+2], MillivoltsLE(volts))
}
