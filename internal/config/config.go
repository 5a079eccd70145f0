// internal/config/config.go
package config

import "time"

type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Retry    RetryConfig    `yaml:"retry"`
	Policy   PolicyConfig   `yaml:"policy"`
	UPS      UPSConfig      `yaml:"ups"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Poll     PollConfig     `yaml:"poll"`
	Status   StatusConfig   `yaml:"status"`
	Log      LogConfig      `yaml:"log"`
}

// ---- DEVICE ----

// Bus backends.
const (
	BackendSMBus  = "smbus"
	BackendModbus = "modbus"
	BackendSim    = "sim"
)

type DeviceConfig struct {
	Backend        string `yaml:"backend"`
	Bus            int    `yaml:"bus"`             // /dev/i2c-N
	ModbusEndpoint string `yaml:"modbus_endpoint"` // host:port of an I2C gateway
	TimeoutMs      int    `yaml:"timeout_ms"`

	UPSAddress       int     `yaml:"ups_address"`
	OutputAddress    int     `yaml:"output_address"`
	OutputShuntOhms  float64 `yaml:"output_shunt_ohms"`
	BatteryAddress   int     `yaml:"battery_address"`
	BatteryShuntOhms float64 `yaml:"battery_shunt_ohms"`
}

func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// ---- RETRY ----

type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	DelayMs  int `yaml:"delay_ms"`
}

func (r RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelayMs) * time.Millisecond
}

// ---- SHUTDOWN POLICY ----

type PolicyConfig struct {
	// Negative disables the timeout trigger.
	PowerFailureToShutdownS int     `yaml:"power_failure_to_shutdown_s"`
	ShutdownVoltage         float64 `yaml:"shutdown_voltage"`
	StaleAfterS             int     `yaml:"stale_after_s"`
	BatteryCurrentVeto      bool    `yaml:"battery_current_veto"`
}

func (p PolicyConfig) FailureTimeout() time.Duration {
	return time.Duration(p.PowerFailureToShutdownS) * time.Second
}

func (p PolicyConfig) StaleAfter() time.Duration {
	return time.Duration(p.StaleAfterS) * time.Second
}

// ---- DESIRED DEVICE CONFIG ----

type UPSConfig struct {
	BatteryProtectionVoltage float64 `yaml:"battery_protection_voltage"`
	SamplePeriodMin          int     `yaml:"sample_period_min"`
	AutoPowerOn              bool    `yaml:"auto_power_on"`
	ShutdownCountdownS       int     `yaml:"shutdown_countdown_s"`
}

// ---- OS SHUTDOWN ----

type ShutdownConfig struct {
	Command string `yaml:"command"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalS       int `yaml:"interval_s"`
	StatusIntervalS int `yaml:"status_interval_s"`
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalS) * time.Second
}

func (p PollConfig) StatusInterval() time.Duration {
	return time.Duration(p.StatusIntervalS) * time.Second
}

// ---- STATUS FILE ----

type StatusConfig struct {
	Path       string `yaml:"path"`
	LogOnRead  bool   `yaml:"log_on_read"`
	LogOnWrite bool   `yaml:"log_on_write"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Syslog bool   `yaml:"syslog"`
}
