// internal/status/record.go
package status

import (
	"time"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/power"
)

// DefaultStaleAfter bounds |now - record.At| for a record to be trusted.
const DefaultStaleAfter = 3 * time.Minute

// TimeLayout is the human-readable UTC time stored next to every timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// Record is the durable checkpoint of the last decision.
// Times persist at full nanosecond resolution.
//
// Invariant: FailureOnset, when set, is not after At.
type Record struct {
	At             time.Time
	Input          power.Input
	InputVoltage   float64
	BatteryVoltage float64

	// FailureOnset is set only while input power is absent.
	FailureOnset *time.Time

	// Snapshot is the full decoded status, kept for diagnostics.
	Snapshot *frame.UpsStatus
}

// InFailure reports whether the record was taken without input power.
func (r Record) InFailure() bool { return r.Input == power.None }

// FormatTime renders t the way the status file shows it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
