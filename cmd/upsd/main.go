// cmd/upsd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"

	"github.com/tamzrod/upsplus-daemon/internal/config"
	"github.com/tamzrod/upsplus-daemon/internal/logging"
)

const usage = "usage: upsd [-once] [-sim] [-debug] [-config FILE]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "upsd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flag, args := flags.New(args, "-once", "-sim", "-debug")
	parm, args := parms.New(args, "-config")
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q\n%s", args, usage)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(parm.ByName["-config"])
	if err != nil {
		return err
	}
	if flag.ByName["-sim"] {
		cfg.Device.Backend = config.BackendSim
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Debug:  flag.ByName["-debug"],
		Syslog: cfg.Log.Syslog,
	}, os.Stderr)
	if err != nil {
		return err
	}
	mlog := logging.Component(log, "main")

	// --------------------
	// Build pipeline
	// --------------------

	b, err := openBus(cfg.Device)
	if err != nil {
		return fmt.Errorf("bus open failed (backend=%s): %w", cfg.Device.Backend, err)
	}
	once := flag.ByName["-once"]
	d, err := build(cfg, b, once, log)
	if err != nil {
		b.Close()
		return fmt.Errorf("daemon build failed: %w", err)
	}
	defer d.Close()

	if once {
		mlog.WithField("backend", cfg.Device.Backend).Info("single UPS poll")
		d.monitor.Handle(d.poller.PollOnce())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mlog.WithField("backend", cfg.Device.Backend).
		WithField("interval", cfg.Poll.Interval().String()).
		Info("start UPS daemon")
	d.poller.Run(ctx, d.monitor.Handle)
	mlog.Info("exit UPS daemon")
	return nil
}

// loadConfig reads path, or the default path when none was given.
// A missing default file means stock settings.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		cfg = config.DefaultConfig()
	}
	config.ApplyEnvOverrides(cfg)
	return cfg, nil
}
