// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/upsplus-daemon/internal/power"
)

// loopState is what the loop remembers between ticks.
type loopState struct {
	known    bool // last full poll succeeded
	input    power.Input
	lastFull time.Time
}

// Run starts the ticker loop and hands full poll results to handle.
// One goroutine. No overlap. Cancellation is checked between ticks only.
//
// Every tick does the cheap power-input read; a full poll runs when the
// input type differs from the last full poll, when the status interval has
// elapsed, or when the last full poll failed.
func (p *Poller) Run(ctx context.Context, handle Handler) {
	st := &loopState{}
	p.tick(st, handle)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(st, handle)
		}
	}
}

func (p *Poller) tick(st *loopState, handle Handler) {
	now := p.cfg.Now()

	full := !st.known || now.Sub(st.lastFull) >= p.cfg.StatusInterval
	if !full {
		pi, err := p.PowerInput()
		if err != nil {
			p.log.WithError(err).Error("power input read failed")
			return
		}
		c := power.Classify(pi.TypeCVoltage, pi.MicroUSBVoltage)
		if c.Input != st.input {
			p.log.WithField("from", st.input.String()).
				WithField("to", c.Input.String()).
				Info("power input changed")
			full = true
		}
	}
	if !full {
		return
	}

	st.lastFull = now
	res := p.PollOnce()
	if res.Err != nil {
		st.known = false
	} else {
		st.known = true
		st.input = power.Classify(res.Status.TypeCVoltage, res.Status.MicroUSBVoltage).Input
	}
	handle(res)
}
