// internal/monitor/decide.go
package monitor

import (
	"time"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/power"
	"github.com/tamzrod/upsplus-daemon/internal/status"
)

// State is the daemon state after one poll.
type State int

const (
	Healthy State = iota
	FailureTiming
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case FailureTiming:
		return "failure-timing"
	case ShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// Trigger names what moved the daemon to ShuttingDown.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerTimeout
	TriggerVoltage
)

func (t Trigger) String() string {
	switch t {
	case TriggerTimeout:
		return "power failure timeout"
	case TriggerVoltage:
		return "battery voltage"
	default:
		return ""
	}
}

// Decision is the outcome of one poll.
type Decision struct {
	At      time.Time
	State   State
	Trigger Trigger
	Class   power.Classification

	// Vetoed reports that a negative battery current overrode the input.
	Vetoed         bool
	BatteryVoltage float64

	// Failure bookkeeping, set only while input power is absent.
	Onset      time.Time
	NewFailure bool // first failed observation
	OnsetReset bool // previous onset was missing or not before now
	Remaining  time.Duration
}

// Decide computes the next state from the previous record (already
// filtered for staleness) and a fresh status. No IO. No side effects.
func Decide(cfg Config, now time.Time, prev *status.Record, s frame.UpsStatus) Decision {
	d := Decision{At: now, BatteryVoltage: s.Battery.Voltage}

	c := power.Classify(s.TypeCVoltage, s.MicroUSBVoltage)
	if cfg.CurrentVeto {
		c, d.Vetoed = power.VetoCurrent(c, s.Battery.Current)
	}
	d.Class = c

	if !c.Failed() {
		d.State = Healthy
		return d
	}

	d.State = FailureTiming
	d.Onset = now
	switch {
	case prev == nil || !prev.InFailure():
		d.NewFailure = true
	case prev.FailureOnset == nil || !prev.FailureOnset.Before(now):
		d.OnsetReset = true
	default:
		d.Onset = *prev.FailureOnset
	}

	if cfg.FailureTimeout >= 0 {
		elapsed := now.Sub(d.Onset).Round(time.Second)
		d.Remaining = cfg.FailureTimeout - elapsed
		if d.Remaining <= 0 {
			d.State = ShuttingDown
			d.Trigger = TriggerTimeout
			return d
		}
	}

	if d.BatteryVoltage <= cfg.ShutdownVoltage {
		d.State = ShuttingDown
		d.Trigger = TriggerVoltage
	}
	return d
}

// Record is the checkpoint persisted for a non-shutdown decision.
func (d Decision) Record(s frame.UpsStatus) status.Record {
	r := status.Record{
		At:             d.At,
		Input:          d.Class.Input,
		InputVoltage:   d.Class.Voltage,
		BatteryVoltage: d.BatteryVoltage,
		Snapshot:       &s,
	}
	if d.State != Healthy {
		onset := d.Onset
		r.FailureOnset = &onset
	}
	return r
}
