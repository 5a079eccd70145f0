// internal/monitor/monitor_test.go
package monitor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/poller"
	"github.com/tamzrod/upsplus-daemon/internal/power"
	"github.com/tamzrod/upsplus-daemon/internal/status"
	"github.com/tamzrod/upsplus-daemon/internal/writer"
)

// ---- fakes ----

// journal records side effects across fakes in call order.
type journal struct{ ops []string }

func (j *journal) add(op string) { j.ops = append(j.ops, op) }

type fakeStore struct {
	j       *journal
	rec     *status.Record
	saveErr error
	deleted []string
}

func (f *fakeStore) Load() *status.Record {
	f.j.add("load")
	if f.rec == nil {
		return nil
	}
	r := *f.rec
	return &r
}

func (f *fakeStore) Save(r status.Record) error {
	f.j.add("save")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rec = &r
	return nil
}

func (f *fakeStore) Delete(reason string) {
	f.j.add("delete:" + reason)
	f.deleted = append(f.deleted, reason)
	f.rec = nil
}

type fakeReconciler struct {
	j     *journal
	calls int
	err   error
}

func (f *fakeReconciler) Reconcile(frame.UpsStatus, writer.Desired) error {
	f.j.add("reconcile")
	f.calls++
	return f.err
}

type fakeShutdowner struct {
	j       *journal
	reasons []string
}

func (f *fakeShutdowner) Shutdown(reason string) {
	f.j.add("shutdown")
	f.reasons = append(f.reasons, reason)
}

type harness struct {
	j   *journal
	st  *fakeStore
	rec *fakeReconciler
	sh  *fakeShutdowner
	m   *Monitor
}

var defaultConfig = Config{
	FailureTimeout:  600 * time.Second,
	ShutdownVoltage: 3.90,
	StaleAfter:      3 * time.Minute,
	CurrentVeto:     true,
	Desired:         writer.Desired{BatteryProtectionVoltage: 3.5, SamplePeriod: 2, AutoPowerOn: true},
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	j := &journal{}
	h := &harness{
		j:   j,
		st:  &fakeStore{j: j},
		rec: &fakeReconciler{j: j},
		sh:  &fakeShutdowner{j: j},
	}
	logger, _ := test.NewNullLogger()
	m, err := New(cfg, h.st, h.rec, h.sh, logger)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	h.m = m
	return h
}

var now = time.UnixMilli(1_700_000_000_000).UTC()

func onBattery(vbat float64) frame.UpsStatus {
	s := frame.Nominal()
	s.TypeCVoltage = 0
	s.MicroUSBVoltage = 0
	s.Battery.Voltage = vbat
	s.Battery.Current = -0.4
	return s
}

func powered() frame.UpsStatus {
	s := frame.Nominal()
	s.Battery.Voltage = 4.1
	s.Battery.Current = 0.3
	return s
}

func failureRecord(at, onset time.Time) *status.Record {
	return &status.Record{At: at, Input: power.None, BatteryVoltage: 3.95, FailureOnset: &onset}
}

// ---- state machine ----

func TestStep_NewFailureStartsTimer(t *testing.T) {
	h := newHarness(t, defaultConfig)

	d := h.m.Step(now, onBattery(4.0))

	if d.State != FailureTiming || !d.NewFailure {
		t.Fatalf("decision = %+v", d)
	}
	if d.Remaining != 600*time.Second {
		t.Fatalf("remaining = %s want 600s", d.Remaining)
	}
	if len(h.sh.reasons) != 0 {
		t.Fatalf("unexpected shutdown")
	}
	if h.st.rec == nil || h.st.rec.FailureOnset == nil || !h.st.rec.FailureOnset.Equal(now) {
		t.Fatalf("record onset = %+v want %v", h.st.rec, now)
	}
	if h.st.rec.Snapshot == nil {
		t.Fatalf("snapshot missing from record")
	}
}

func TestStep_LowVoltageShutsDownImmediately(t *testing.T) {
	h := newHarness(t, defaultConfig)

	d := h.m.Step(now, onBattery(3.80))

	if d.State != ShuttingDown || d.Trigger != TriggerVoltage {
		t.Fatalf("decision = %+v", d)
	}
	if len(h.sh.reasons) != 1 {
		t.Fatalf("shutdown calls = %d", len(h.sh.reasons))
	}

	// record deleted before the executor runs, never saved
	want := []string{"load", "reconcile", "delete:shutdown", "shutdown"}
	if len(h.j.ops) != len(want) {
		t.Fatalf("ops = %v want %v", h.j.ops, want)
	}
	for i := range want {
		if h.j.ops[i] != want[i] {
			t.Fatalf("ops = %v want %v", h.j.ops, want)
		}
	}
}

func TestStep_VoltageBoundInclusive(t *testing.T) {
	h := newHarness(t, defaultConfig)
	if d := h.m.Step(now, onBattery(3.90)); d.Trigger != TriggerVoltage {
		t.Fatalf("3.90 <= 3.90 must trigger, got %+v", d)
	}
}

func TestStep_TimeoutShutdown(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.st.rec = failureRecord(now.Add(-5*time.Second), now.Add(-700*time.Second))

	d := h.m.Step(now, onBattery(4.0))

	if d.State != ShuttingDown || d.Trigger != TriggerTimeout {
		t.Fatalf("decision = %+v", d)
	}
	if !d.Onset.Equal(now.Add(-700 * time.Second)) {
		t.Fatalf("onset not carried: %v", d.Onset)
	}
	if len(h.sh.reasons) != 1 || h.st.rec != nil {
		t.Fatalf("expected shutdown with record deleted")
	}
}

func TestStep_CarriesOnsetForward(t *testing.T) {
	h := newHarness(t, defaultConfig)
	onset := now.Add(-100 * time.Second)
	h.st.rec = failureRecord(now.Add(-5*time.Second), onset)

	d := h.m.Step(now, onBattery(4.0))

	if d.State != FailureTiming || d.NewFailure || d.OnsetReset {
		t.Fatalf("decision = %+v", d)
	}
	if d.Remaining != 500*time.Second {
		t.Fatalf("remaining = %s want 500s", d.Remaining)
	}
	if !h.st.rec.FailureOnset.Equal(onset) {
		t.Fatalf("persisted onset = %v want %v", h.st.rec.FailureOnset, onset)
	}
}

func TestStep_StaleRecordDiscarded(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.st.rec = failureRecord(now.Add(-5*time.Minute), now.Add(-6*time.Minute))

	d := h.m.Step(now, onBattery(4.0))

	if len(h.st.deleted) != 1 || h.st.deleted[0] != "stale" {
		t.Fatalf("deleted = %v", h.st.deleted)
	}
	if !d.NewFailure || !d.Onset.Equal(now) {
		t.Fatalf("onset must restart at now: %+v", d)
	}
	if d.State != FailureTiming {
		t.Fatalf("state = %s", d.State)
	}
}

func TestStep_FutureRecordIsStale(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.st.rec = failureRecord(now.Add(4*time.Minute), now.Add(-time.Hour))

	d := h.m.Step(now, onBattery(4.0))
	if !d.NewFailure || d.State != FailureTiming {
		t.Fatalf("future record must be discarded: %+v", d)
	}
}

func TestStep_NonMonotonicOnsetReset(t *testing.T) {
	h := newHarness(t, defaultConfig)

	for _, onset := range []*time.Time{nil, ptr(now), ptr(now.Add(time.Second))} {
		h.st.rec = &status.Record{At: now.Add(-5 * time.Second), Input: power.None, FailureOnset: onset}

		d := h.m.Step(now, onBattery(4.0))
		if !d.OnsetReset || !d.Onset.Equal(now) {
			t.Fatalf("onset %v: decision = %+v", onset, d)
		}
	}
}

func TestStep_HealthyClearsTimer(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.st.rec = failureRecord(now.Add(-5*time.Second), now.Add(-300*time.Second))

	d := h.m.Step(now, powered())

	if d.State != Healthy || d.Class.Input != power.TypeC {
		t.Fatalf("decision = %+v", d)
	}
	if h.st.rec.FailureOnset != nil {
		t.Fatalf("onset must be cleared while powered")
	}
}

func TestStep_CurrentVeto(t *testing.T) {
	s := powered()
	s.Battery.Current = -0.5

	h := newHarness(t, defaultConfig)
	if d := h.m.Step(now, s); !d.Vetoed || d.State != FailureTiming {
		t.Fatalf("veto on: decision = %+v", d)
	}

	cfg := defaultConfig
	cfg.CurrentVeto = false
	h = newHarness(t, cfg)
	if d := h.m.Step(now, s); d.Vetoed || d.State != Healthy {
		t.Fatalf("veto off: decision = %+v", d)
	}
}

func TestStep_TimeoutDisabled(t *testing.T) {
	cfg := defaultConfig
	cfg.FailureTimeout = -1
	h := newHarness(t, cfg)
	h.st.rec = failureRecord(now.Add(-5*time.Second), now.Add(-24*time.Hour))

	if d := h.m.Step(now, onBattery(4.0)); d.State != FailureTiming {
		t.Fatalf("decision = %+v", d)
	}
	if d := h.m.Step(now.Add(time.Second), onBattery(3.5)); d.Trigger != TriggerVoltage {
		t.Fatalf("voltage trigger must still fire: %+v", d)
	}
}

func TestStep_ZeroTimeoutShutsDownOnFirstFailure(t *testing.T) {
	cfg := defaultConfig
	cfg.FailureTimeout = 0
	h := newHarness(t, cfg)

	if d := h.m.Step(now, onBattery(4.0)); d.Trigger != TriggerTimeout {
		t.Fatalf("decision = %+v", d)
	}
}

func TestStep_ReconcileErrorDoesNotBlockDecision(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.rec.err = errors.New("nack")

	if d := h.m.Step(now, onBattery(3.5)); d.State != ShuttingDown {
		t.Fatalf("decision = %+v", d)
	}
	if len(h.sh.reasons) != 1 {
		t.Fatalf("shutdown not invoked")
	}
}

func TestHandle_PollError(t *testing.T) {
	cfg := defaultConfig
	cfg.DeleteOnPollError = true
	h := newHarness(t, cfg)

	h.m.Handle(poller.PollResult{At: now, Err: errors.New("bus error")})

	if len(h.st.deleted) != 1 || h.rec.calls != 0 {
		t.Fatalf("deleted=%v reconcile=%d", h.st.deleted, h.rec.calls)
	}

	h = newHarness(t, defaultConfig)
	h.m.Handle(poller.PollResult{At: now, Err: errors.New("bus error")})
	if len(h.j.ops) != 0 {
		t.Fatalf("loop mode must not touch the store: %v", h.j.ops)
	}
}

func TestHandle_DecodeErrorDeletesRecord(t *testing.T) {
	h := newHarness(t, defaultConfig)
	h.st.rec = failureRecord(now.Add(-time.Minute), now.Add(-2*time.Minute))

	err := fmt.Errorf("poller: decode status: %w",
		&frame.DataOutOfRangeError{Field: "Battery voltage", Value: "4.80", Bound: "[0, 4.5]"})
	h.m.Handle(poller.PollResult{At: now, Err: err})

	if len(h.st.deleted) != 1 || h.st.deleted[0] != "decode failed" {
		t.Fatalf("deleted=%v", h.st.deleted)
	}
	if h.rec.calls != 0 || len(h.sh.reasons) != 0 {
		t.Fatalf("decode failure must not reconcile or shut down")
	}
}

func TestHandle_Status(t *testing.T) {
	h := newHarness(t, defaultConfig)
	s := powered()

	h.m.Handle(poller.PollResult{At: now, Status: &s})
	if h.st.rec == nil || !h.st.rec.At.Equal(now) {
		t.Fatalf("record not saved: %+v", h.st.rec)
	}
}

func ptr(t time.Time) *time.Time { return &t }
