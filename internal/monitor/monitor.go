// internal/monitor/monitor.go
package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/poller"
	"github.com/tamzrod/upsplus-daemon/internal/status"
	"github.com/tamzrod/upsplus-daemon/internal/writer"
)

// Config is the shutdown policy.
type Config struct {
	// FailureTimeout is the time on battery before shutdown. Negative disables.
	FailureTimeout  time.Duration
	ShutdownVoltage float64
	StaleAfter      time.Duration
	CurrentVeto     bool
	Desired         writer.Desired

	// DeleteOnPollError removes the record when a poll fails on the bus
	// (one-shot runs). A frame that fails decoding always removes it.
	DeleteOnPollError bool
}

// Reconciler brings the device configuration to the desired values.
// *writer.Writer satisfies it.
type Reconciler interface {
	Reconcile(live frame.UpsStatus, desired writer.Desired) error
}

// Shutdowner powers the host down. Shutdown is not expected to return.
type Shutdowner interface {
	Shutdown(reason string)
}

// Monitor runs the failure/shutdown state machine once per poll.
type Monitor struct {
	cfg   Config
	store status.Store
	rec   Reconciler
	sh    Shutdowner
	log   logrus.FieldLogger
}

func New(cfg Config, store status.Store, rec Reconciler, sh Shutdowner, log logrus.FieldLogger) (*Monitor, error) {
	if store == nil || rec == nil || sh == nil {
		return nil, errors.New("monitor: store, reconciler and shutdowner required")
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = status.DefaultStaleAfter
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Monitor{cfg: cfg, store: store, rec: rec, sh: sh, log: log}, nil
}

// Handle consumes one poll result; it matches poller.Handler.
func (m *Monitor) Handle(res poller.PollResult) {
	if res.Err != nil {
		m.log.WithError(res.Err).Error("ups poll failed")
		var rangeErr *frame.DataOutOfRangeError
		switch {
		case errors.As(res.Err, &rangeErr):
			m.store.Delete("decode failed")
		case m.cfg.DeleteOnPollError:
			m.store.Delete("poll failed")
		}
		return
	}
	m.Step(res.At, *res.Status)
}

// Step runs one decision for a fresh status observed at now.
func (m *Monitor) Step(now time.Time, s frame.UpsStatus) Decision {
	prev := m.store.Load()
	if prev != nil {
		if skew := now.Sub(prev.At); skew > m.cfg.StaleAfter || skew < -m.cfg.StaleAfter {
			m.log.WithField("recorded", status.FormatTime(prev.At)).
				WithField("skew", skew.Round(time.Second).String()).
				Warn("status record stale, discarded")
			m.store.Delete("stale")
			prev = nil
		}
	}

	if err := m.rec.Reconcile(s, m.cfg.Desired); err != nil {
		m.log.WithError(err).Error("device config reconcile failed")
	}

	d := Decide(m.cfg, now, prev, s)
	m.report(d)

	if d.State == ShuttingDown {
		m.store.Delete("shutdown")
		m.sh.Shutdown(shutdownReason(m.cfg, d))
		return d
	}

	if err := m.store.Save(d.Record(s)); err != nil {
		m.log.WithError(err).Error("status save failed")
	}
	return d
}

func (m *Monitor) report(d Decision) {
	if d.State == Healthy {
		m.log.WithField("input", d.Class.Input.String()).
			WithField("voltage", d.Class.Voltage).
			Info("input power ok")
		return
	}

	log := m.log.WithField("vbat", d.BatteryVoltage).
		WithField("onset", status.FormatTime(d.Onset))
	if d.Vetoed {
		log.Warn("negative battery current, input reading ignored")
	}
	switch {
	case d.NewFailure:
		log.Warn("input power failure detected, running on battery")
	case d.OnsetReset:
		log.Warn("power failure time not valid, reset to current time")
	default:
		log.Warn("input power failure continues, running on battery")
	}

	switch d.Trigger {
	case TriggerTimeout:
		log.Warn("shutdown now: power failure timeout")
	case TriggerVoltage:
		log.Warnf("shutdown now: battery voltage %.3f <= %.3f", d.BatteryVoltage, m.cfg.ShutdownVoltage)
	default:
		if m.cfg.FailureTimeout >= 0 {
			log.Warnf("shutdown in %s", d.Remaining)
		}
	}
}

func shutdownReason(cfg Config, d Decision) string {
	if d.Trigger == TriggerVoltage {
		return fmt.Sprintf("battery voltage %.3f <= %.3f", d.BatteryVoltage, cfg.ShutdownVoltage)
	}
	return fmt.Sprintf("power failure for %s", d.At.Sub(d.Onset).Round(time.Second))
}
