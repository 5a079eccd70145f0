// internal/frame/nominal.go
package frame

// Nominal returns the status of a healthy UPS on TypeC input.
// It seeds the simulator backend.
func Nominal() UpsStatus {
	return UpsStatus{
		MCUVoltage:               3.3,
		PogoPinVoltage:           5.08,
		BatteryVoltage:           4.12,
		TypeCVoltage:             5.12,
		MicroUSBVoltage:          0,
		BatteryTemperature:       31,
		BatteryFullVoltage:       4.2,
		BatteryEmptyVoltage:      3.3,
		BatteryProtectionVoltage: 3.5,
		BatteryRemaining:         93,
		SamplePeriod:             2,
		PowerStatus:              1,
		ShutdownCountdown:        0,
		AutoPowerOn:              1,
		RestartCountdown:         0,
		Reset:                    0,
		AccumulatedRunningTime:   86400,
		AccumulatedChargingTime:  43200,
		CurrentRunningTime:       3600,
		Version:                  10,
		BatteryParameters:        1,
		SerialNumber:             "003A0027-31345117-35323437",
	}
}
