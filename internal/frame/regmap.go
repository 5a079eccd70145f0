// internal/frame/regmap.go
package frame

// UPS MCU register map.
// These values describe the device and MUST NOT be configurable.

// ---- FRAME GEOMETRY ----

// FrameSize is the full-status read (registers 0x00..0xFF).
const FrameSize = 0xFF + 1

// PowerInputRegister / PowerInputSize describe the cheap power-input read.
const (
	PowerInputRegister = 0x07
	PowerInputSize     = 4
)

// ---- READ-ONLY STATUS (little-endian) ----

const (
	RegMCUVoltage          = 0x01 // 2 bytes, mV
	RegPogoPinVoltage      = 0x03 // 2 bytes, mV
	RegBatteryVoltage      = 0x05 // 2 bytes, mV
	RegTypeCVoltage        = 0x07 // 2 bytes, mV
	RegMicroUSBVoltage     = 0x09 // 2 bytes, mV
	RegBatteryTemperature  = 0x0B // 2 bytes, degC
	RegBatteryFullVoltage  = 0x0D // 2 bytes, mV
	RegBatteryEmptyVoltage = 0x0F // 2 bytes, mV
	RegBatteryRemaining    = 0x13 // 2 bytes, %
	RegPowerStatus         = 0x17 // 1 byte
	RegReset               = 0x1B // 1 byte
	RegAccumulatedRunning  = 0x1C // 4 bytes, s
	RegAccumulatedCharging = 0x20 // 4 bytes, s
	RegCurrentRunning      = 0x24 // 4 bytes, s
	RegVersion             = 0x28 // 2 bytes
	RegBatteryParameters   = 0x2A // 1 byte
	RegSerial0             = 0xF0 // 4 bytes
	RegSerial1             = 0xF4 // 4 bytes
	RegSerial2             = 0xF8 // 4 bytes
)

// ---- WRITABLE CONFIGURATION ----

const (
	RegBatteryProtectionVoltage = 0x11 // 2 bytes, mV
	RegSamplePeriod             = 0x15 // 2 bytes, min
	RegShutdownCountdown        = 0x18 // 1 byte, s
	RegAutoPowerOn              = 0x19 // 1 byte
	RegRestartCountdown         = 0x1A // 1 byte, s
)

// ---- SENTINELS ----

const (
	unprogrammedVersion     = 0xFFFF
	unprogrammedBatteryPar  = 0xFF
	unprogrammedTemperature = 0xFFFF
	unprogrammedSerial      = "FFFFFFFF-FFFFFFFF-FFFFFFFF"
)
