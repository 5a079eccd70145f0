// internal/frame/status.go
package frame

import "github.com/tamzrod/upsplus-daemon/internal/sense"

// UpsStatus is one decoded, validated full-status read.
// Voltages are in volts rounded to 2 decimals.
type UpsStatus struct {
	// Sense channels (filled by the poller, not by Decode).
	Output  sense.Reading `json:"inaOutput"`
	Battery sense.Reading `json:"inaBattery"`

	MCUVoltage               float64 `json:"mcuVoltage"`
	PogoPinVoltage           float64 `json:"pogoPinVoltage"`
	BatteryVoltage           float64 `json:"batteryVoltage"`
	TypeCVoltage             float64 `json:"typecVoltage"`
	MicroUSBVoltage          float64 `json:"microUsbVoltage"`
	BatteryTemperature       int     `json:"batteryTemperature"`
	BatteryFullVoltage       float64 `json:"batteryFullVoltage"`
	BatteryEmptyVoltage      float64 `json:"batteryEmptyVoltage"`
	BatteryProtectionVoltage float64 `json:"batteryProtectionVoltage"`
	BatteryRemaining         int     `json:"batteryRemaining"`
	SamplePeriod             int     `json:"samplePeriod"`
	PowerStatus              int     `json:"powerStatus"`
	ShutdownCountdown        int     `json:"shutdownCountdown"`
	AutoPowerOn              int     `json:"autoPowerOn"`
	RestartCountdown         int     `json:"restartCountdown"`
	Reset                    int     `json:"reset"`
	AccumulatedRunningTime   int64   `json:"accumulatedRunningTime"`
	AccumulatedChargingTime  int64   `json:"accumulatedChargingTime"`
	CurrentRunningTime       int64   `json:"currentRunningTime"`
	Version                  int     `json:"version"`
	BatteryParameters        int     `json:"batteryParameters"`
	SerialNumber             string  `json:"serialNumber"`
}

// PowerInput is the result of the cheap 4-byte power-input read.
type PowerInput struct {
	TypeCVoltage    float64
	MicroUSBVoltage float64
}
