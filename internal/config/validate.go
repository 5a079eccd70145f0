// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device
	switch strings.ToLower(strings.TrimSpace(d.Backend)) {
	case BackendSMBus:
		if d.Bus < 0 {
			return fmt.Errorf("device.bus %d must be >= 0", d.Bus)
		}
	case BackendModbus:
		if strings.TrimSpace(d.ModbusEndpoint) == "" {
			return fmt.Errorf("device.modbus_endpoint is required for backend %q", BackendModbus)
		}
	case BackendSim:
	default:
		return fmt.Errorf("device.backend %q unknown (want %s, %s or %s)",
			d.Backend, BackendSMBus, BackendModbus, BackendSim)
	}
	if d.TimeoutMs <= 0 {
		return fmt.Errorf("device.timeout_ms %d must be > 0", d.TimeoutMs)
	}

	addrs := []struct {
		name string
		v    int
	}{
		{"device.ups_address", d.UPSAddress},
		{"device.output_address", d.OutputAddress},
		{"device.battery_address", d.BatteryAddress},
	}
	seen := make(map[int]string)
	for _, a := range addrs {
		if a.v < 0x03 || a.v > 0x77 {
			return fmt.Errorf("%s 0x%02x outside 7-bit range [0x03, 0x77]", a.name, a.v)
		}
		if prev, ok := seen[a.v]; ok {
			return fmt.Errorf("%s 0x%02x collides with %s", a.name, a.v, prev)
		}
		seen[a.v] = a.name
	}
	if d.OutputShuntOhms <= 0 {
		return fmt.Errorf("device.output_shunt_ohms %g must be > 0", d.OutputShuntOhms)
	}
	if d.BatteryShuntOhms <= 0 {
		return fmt.Errorf("device.battery_shunt_ohms %g must be > 0", d.BatteryShuntOhms)
	}

	// ------------------------------------------------------------
	// RETRY
	// ------------------------------------------------------------

	if cfg.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts %d must be >= 1", cfg.Retry.Attempts)
	}
	if cfg.Retry.DelayMs < 0 {
		return fmt.Errorf("retry.delay_ms %d must be >= 0", cfg.Retry.DelayMs)
	}

	// ------------------------------------------------------------
	// POLICY
	// ------------------------------------------------------------

	p := cfg.Policy
	if p.PowerFailureToShutdownS < -1 {
		return fmt.Errorf("policy.power_failure_to_shutdown_s %d must be >= -1", p.PowerFailureToShutdownS)
	}
	if p.ShutdownVoltage < 0 || p.ShutdownVoltage > 4.5 {
		return fmt.Errorf("policy.shutdown_voltage %.2f out of range [0, 4.5]", p.ShutdownVoltage)
	}
	if p.StaleAfterS <= 0 {
		return fmt.Errorf("policy.stale_after_s %d must be > 0", p.StaleAfterS)
	}

	// ------------------------------------------------------------
	// DESIRED DEVICE CONFIG
	// ------------------------------------------------------------

	u := cfg.UPS
	if u.BatteryProtectionVoltage < 0 || u.BatteryProtectionVoltage > 4.5 {
		return fmt.Errorf("ups.battery_protection_voltage %.2f out of range [0, 4.5]", u.BatteryProtectionVoltage)
	}
	if u.SamplePeriodMin < 1 || u.SamplePeriodMin > 1440 {
		return fmt.Errorf("ups.sample_period_min %d out of range [1, 1440]", u.SamplePeriodMin)
	}
	if u.ShutdownCountdownS < 0 || u.ShutdownCountdownS > 255 {
		return fmt.Errorf("ups.shutdown_countdown_s %d out of range [0, 255]", u.ShutdownCountdownS)
	}

	// ------------------------------------------------------------
	// SHUTDOWN / POLL / STATUS / LOG
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Shutdown.Command) == "" {
		return fmt.Errorf("shutdown.command is required")
	}
	if cfg.Poll.IntervalS <= 0 {
		return fmt.Errorf("poll.interval_s %d must be > 0", cfg.Poll.IntervalS)
	}
	if cfg.Poll.StatusIntervalS < 0 {
		return fmt.Errorf("poll.status_interval_s %d must be >= 0", cfg.Poll.StatusIntervalS)
	}
	// On battery the input type does not change, so full polls come only
	// from the status interval. Each one must land before the previous
	// record goes stale or the failure timer restarts forever.
	if gap := cfg.Poll.StatusIntervalS + cfg.Poll.IntervalS; gap >= cfg.Policy.StaleAfterS {
		return fmt.Errorf("poll.status_interval_s + poll.interval_s (%ds) must be < policy.stale_after_s (%ds)",
			gap, cfg.Policy.StaleAfterS)
	}
	if strings.TrimSpace(cfg.Status.Path) == "" {
		return fmt.Errorf("status.path is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "", "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace":
	default:
		return fmt.Errorf("log.level %q unknown", cfg.Log.Level)
	}

	return nil
}
