// internal/writer/reconcile.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
)

// Desired is the device configuration the daemon enforces every poll.
// Shutdown and restart countdowns always target 0.
type Desired struct {
	BatteryProtectionVoltage float64
	SamplePeriod             int
	AutoPowerOn              bool
}

// Reconcile writes every writable register whose live value differs from
// desired. All registers are attempted; failures are aggregated.
func (w *Writer) Reconcile(live frame.UpsStatus, desired Desired) error {
	var errs []string

	record := func(reg string, err error) {
		if err != nil {
			errs = append(errs, fmt.Sprintf("writer: %s: %v", reg, err))
		}
	}

	if millivolts(live.BatteryProtectionVoltage) != millivolts(desired.BatteryProtectionVoltage) {
		w.logChange("battery protection voltage", live.BatteryProtectionVoltage, desired.BatteryProtectionVoltage)
		record("battery protection voltage", w.SetBatteryProtectionVoltage(desired.BatteryProtectionVoltage))
	}

	if live.SamplePeriod != desired.SamplePeriod {
		w.logChange("sample period", live.SamplePeriod, desired.SamplePeriod)
		record("sample period", w.SetSamplePeriod(desired.SamplePeriod))
	}

	wantAuto := 0
	if desired.AutoPowerOn {
		wantAuto = 1
	}
	if live.AutoPowerOn != wantAuto {
		w.logChange("auto power on", live.AutoPowerOn, wantAuto)
		record("auto power on", w.SetAutoPowerOn(desired.AutoPowerOn))
	}

	if live.ShutdownCountdown != 0 {
		w.logChange("shutdown countdown", live.ShutdownCountdown, 0)
		record("shutdown countdown", w.SetShutdownCountdown(0))
	}

	if live.RestartCountdown != 0 {
		w.logChange("restart countdown", live.RestartCountdown, 0)
		record("restart countdown", w.SetRestartCountdown(0))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

func (w *Writer) logChange(reg string, from, to any) {
	w.log.WithFields(logrus.Fields{
		"register": reg,
		"old":      from,
		"new":      to,
	}).Info("reconcile device config")
}
