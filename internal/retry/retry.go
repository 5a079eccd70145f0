// internal/retry/retry.go
package retry

import (
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sirupsen/logrus"
)

// Default policy of the UPS register and status file I/O.
const (
	DefaultAttempts = 10
	DefaultDelay    = 2 * time.Second
)

// Policy is a bounded, fixed-delay retry policy.
// A loop started by Do always runs to success or exhaustion; it is never
// cancelled.
type Policy struct {
	Attempts int
	Delay    time.Duration

	// Sleep replaces time.Sleep (tests).
	Sleep func(time.Duration)
	Log   logrus.FieldLogger
}

// Default returns the stock policy.
func Default(log logrus.FieldLogger) Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay, Log: log}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: aborted after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs fn until it succeeds or the attempts are exhausted.
func (p Policy) Do(op string, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	// Factor 1 with Min == Max yields a constant delay.
	b := &backoff.Backoff{
		Min:    p.Delay,
		Max:    p.Delay,
		Factor: 1,
		Jitter: false,
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Log != nil {
			p.Log.WithError(err).WithField("attempt", i).Errorf("error %s", op)
		}
		if i == attempts {
			break
		}
		var d time.Duration
		if p.Delay > 0 {
			d = b.Duration()
		}
		if p.Log != nil {
			p.Log.Infof("retry %s for %d time in %s", op, i, d)
		}
		if d > 0 {
			sleep(d)
		}
	}

	if p.Log != nil {
		p.Log.Warnf("abort %s after %d attempts", op, attempts)
	}
	return &ExhaustedError{Op: op, Attempts: attempts, Err: err}
}
