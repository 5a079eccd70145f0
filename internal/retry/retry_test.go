// internal/retry/retry_test.go
package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	var slept []time.Duration
	calls := 0

	p := Policy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Sleep:    func(d time.Duration) { slept = append(slept, d) },
	}

	err := p.Do("read UPS status", func() error {
		calls++
		if calls < 3 {
			return errors.New("i/o error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
	for i, d := range slept {
		if d != 2*time.Second {
			t.Fatalf("sleep %d: got %s want fixed 2s", i, d)
		}
	}
}

func TestDo_Exhausted(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cause := errors.New("nack")
	calls := 0
	sleeps := 0

	p := Policy{
		Attempts: 10,
		Delay:    3 * time.Second,
		Sleep:    func(time.Duration) { sleeps++ },
		Log:      logger,
	}

	err := p.Do("write UPS register", func() error {
		calls++
		return cause
	})

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if ex.Attempts != 10 || calls != 10 {
		t.Fatalf("attempts=%d calls=%d, want 10", ex.Attempts, calls)
	}
	if sleeps != 9 {
		t.Fatalf("expected 9 sleeps between 10 attempts, got %d", sleeps)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped: %v", err)
	}

	last := hook.LastEntry()
	if last == nil || last.Level != logrus.WarnLevel {
		t.Fatalf("expected abort warning, got %+v", last)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	p := Policy{Sleep: func(time.Duration) { t.Fatalf("must not sleep") }}

	_ = p.Do("op", func() error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_ZeroDelayDoesNotSleep(t *testing.T) {
	calls := 0
	p := Policy{
		Attempts: 3,
		Sleep:    func(time.Duration) { t.Fatalf("must not sleep with zero delay") },
	}

	_ = p.Do("op", func() error {
		calls++
		return errors.New("x")
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}
