// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the daemon looks for its config.
const DefaultPath = "/etc/upsd/config.yaml"

// Load reads a YAML file over the defaults.
// Sections and keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a new Config populated with the stock values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Backend:          BackendSMBus,
			Bus:              1,
			TimeoutMs:        1000,
			UPSAddress:       0x17,
			OutputAddress:    0x40,
			OutputShuntOhms:  0.00725,
			BatteryAddress:   0x45,
			BatteryShuntOhms: 0.005,
		},
		Retry: RetryConfig{
			Attempts: 10,
			DelayMs:  2000,
		},
		Policy: PolicyConfig{
			PowerFailureToShutdownS: 600,
			ShutdownVoltage:         3.90,
			StaleAfterS:             180,
			BatteryCurrentVeto:      true,
		},
		UPS: UPSConfig{
			BatteryProtectionVoltage: 3.50,
			SamplePeriodMin:          2,
			AutoPowerOn:              true,
			ShutdownCountdownS:       30,
		},
		Shutdown: ShutdownConfig{
			Command: "sudo shutdown -h now",
		},
		Poll: PollConfig{
			IntervalS:       5,
			StatusIntervalS: 60,
		},
		Status: StatusConfig{
			Path:       "/var/lib/upsplus/status.json",
			LogOnWrite: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - UPSD_STATUS_PATH overrides cfg.Status.Path
//   - UPSD_SHUTDOWN_COMMAND overrides cfg.Shutdown.Command
//   - UPSD_LOG_LEVEL overrides cfg.Log.Level
func ApplyEnvOverrides(cfg *Config) {
	if path := os.Getenv("UPSD_STATUS_PATH"); path != "" {
		cfg.Status.Path = path
	}
	if cmd := os.Getenv("UPSD_SHUTDOWN_COMMAND"); cmd != "" {
		cfg.Shutdown.Command = cmd
	}
	if level := os.Getenv("UPSD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
