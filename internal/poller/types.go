// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
)

// PollResult is a snapshot produced by one full poll cycle.
type PollResult struct {
	At time.Time

	// Status is set only when every read and the decode succeeded.
	Status *frame.UpsStatus
	Err    error // non-nil means the poll cycle failed
}

// Handler consumes full poll results. It runs on the polling goroutine,
// so the next poll starts only after it returns.
type Handler func(PollResult)
