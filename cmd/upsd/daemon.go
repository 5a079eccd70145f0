// cmd/upsd/daemon.go
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/bus"
	"github.com/tamzrod/upsplus-daemon/internal/config"
	"github.com/tamzrod/upsplus-daemon/internal/logging"
	"github.com/tamzrod/upsplus-daemon/internal/monitor"
	"github.com/tamzrod/upsplus-daemon/internal/poller"
	"github.com/tamzrod/upsplus-daemon/internal/retry"
	"github.com/tamzrod/upsplus-daemon/internal/sense"
	"github.com/tamzrod/upsplus-daemon/internal/shutdown"
	"github.com/tamzrod/upsplus-daemon/internal/status"
	"github.com/tamzrod/upsplus-daemon/internal/transport"
	"github.com/tamzrod/upsplus-daemon/internal/writer"
)

// daemon is the wired pipeline: bus -> transport -> poller -> monitor.
type daemon struct {
	bus     bus.Bus
	poller  *poller.Poller
	monitor *monitor.Monitor
}

func (d *daemon) Close() error { return d.bus.Close() }

func openBus(cfg config.DeviceConfig) (bus.Bus, error) {
	switch cfg.Backend {
	case config.BackendSMBus:
		return bus.OpenSMBus(cfg.Bus)
	case config.BackendModbus:
		return bus.NewModbusGateway(bus.ModbusConfig{
			Endpoint: cfg.ModbusEndpoint,
			Timeout:  cfg.Timeout(),
		})
	case config.BackendSim:
		return newSimBus(cfg)
	default:
		return nil, fmt.Errorf("unknown bus backend %q", cfg.Backend)
	}
}

// build wires every component from a validated, normalized config.
func build(cfg *config.Config, b bus.Bus, once bool, log logrus.FieldLogger) (*daemon, error) {
	rp := func(component string) retry.Policy {
		return retry.Policy{
			Attempts: cfg.Retry.Attempts,
			Delay:    cfg.Retry.Delay(),
			Log:      logging.Component(log, component),
		}
	}

	tr, err := transport.New(transport.Config{
		Address: uint8(cfg.Device.UPSAddress),
		Retry:   rp("transport"),
	}, b, logging.Component(log, "transport"))
	if err != nil {
		return nil, err
	}

	tx := bus.NewTx(b)
	output, err := sense.NewINA219(tx, uint16(cfg.Device.OutputAddress), cfg.Device.OutputShuntOhms)
	if err != nil {
		return nil, err
	}
	battery, err := sense.NewINA219(tx, uint16(cfg.Device.BatteryAddress), cfg.Device.BatteryShuntOhms)
	if err != nil {
		return nil, err
	}
	for _, ina := range []*sense.INA219{output, battery} {
		if err := rp("sense").Do("configure INA219", ina.Configure); err != nil {
			return nil, err
		}
	}

	p, err := poller.New(poller.Config{
		Interval:       cfg.Poll.Interval(),
		StatusInterval: cfg.Poll.StatusInterval(),
		Retry:          rp("poller"),
	}, tr, output, battery, logging.Component(log, "poller"))
	if err != nil {
		return nil, err
	}

	wr := writer.New(tr, logging.Component(log, "writer"))

	store, err := status.NewFileStore(status.Config{
		Path:       cfg.Status.Path,
		Retry:      rp("status"),
		LogOnRead:  cfg.Status.LogOnRead,
		LogOnWrite: cfg.Status.LogOnWrite,
	}, logging.Component(log, "status"))
	if err != nil {
		return nil, err
	}

	sh, err := shutdown.New(shutdown.Config{
		Command:   cfg.Shutdown.Command,
		Countdown: cfg.UPS.ShutdownCountdownS,
	}, wr, logging.Component(log, "shutdown"))
	if err != nil {
		return nil, err
	}

	m, err := monitor.New(monitor.Config{
		FailureTimeout:  cfg.Policy.FailureTimeout(),
		ShutdownVoltage: cfg.Policy.ShutdownVoltage,
		StaleAfter:      cfg.Policy.StaleAfter(),
		CurrentVeto:     cfg.Policy.BatteryCurrentVeto,
		Desired: writer.Desired{
			BatteryProtectionVoltage: cfg.UPS.BatteryProtectionVoltage,
			SamplePeriod:             cfg.UPS.SamplePeriodMin,
			AutoPowerOn:              cfg.UPS.AutoPowerOn,
		},
		DeleteOnPollError: once,
	}, store, wr, sh, logging.Component(log, "monitor"))
	if err != nil {
		return nil, err
	}

	return &daemon{bus: b, poller: p, monitor: m}, nil
}
