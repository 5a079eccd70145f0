// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Device.Backend = strings.ToLower(strings.TrimSpace(cfg.Device.Backend))
	cfg.Device.ModbusEndpoint = strings.TrimSpace(cfg.Device.ModbusEndpoint)
	cfg.Shutdown.Command = strings.TrimSpace(cfg.Shutdown.Command)
	cfg.Status.Path = strings.TrimSpace(cfg.Status.Path)

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
