// internal/status/encode.go
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/power"
)

// wireRecord is the status file layout. Timestamps are unix nanoseconds.
type wireRecord struct {
	Timestamp             int64            `json:"timestamp"`
	Time                  string           `json:"time"`
	PowerInputType        power.Input      `json:"powerInputType"`
	PowerInputVoltage     float64          `json:"powerInputVoltage"`
	BatteryVoltage        float64          `json:"batteryVoltage"`
	PowerFailureTimestamp *int64           `json:"powerFailureTimestamp,omitempty"`
	PowerFailureTime      string           `json:"powerFailureTime,omitempty"`
	UpsStatus             *frame.UpsStatus `json:"upsStatus,omitempty"`
}

var errCorrupt = errors.New("status: corrupt record")

// Encode converts a Record into status file bytes.
// No IO. No side effects.
func Encode(r Record) ([]byte, error) {
	w := wireRecord{
		Timestamp:         r.At.UnixNano(),
		Time:              FormatTime(r.At),
		PowerInputType:    r.Input,
		PowerInputVoltage: r.InputVoltage,
		BatteryVoltage:    r.BatteryVoltage,
		UpsStatus:         r.Snapshot,
	}
	if r.FailureOnset != nil {
		ns := r.FailureOnset.UnixNano()
		w.PowerFailureTimestamp = &ns
		w.PowerFailureTime = FormatTime(*r.FailureOnset)
	}
	return json.MarshalIndent(w, "", "    ")
}

// Decode parses status file bytes and checks the record invariants.
func Decode(b []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if w.Timestamp <= 0 {
		return Record{}, fmt.Errorf("%w: missing timestamp", errCorrupt)
	}

	r := Record{
		At:             time.Unix(0, w.Timestamp).UTC(),
		Input:          w.PowerInputType,
		InputVoltage:   w.PowerInputVoltage,
		BatteryVoltage: w.BatteryVoltage,
		Snapshot:       w.UpsStatus,
	}
	if w.PowerFailureTimestamp != nil {
		if *w.PowerFailureTimestamp > w.Timestamp {
			return Record{}, fmt.Errorf("%w: failure onset %d after timestamp %d",
				errCorrupt, *w.PowerFailureTimestamp, w.Timestamp)
		}
		onset := time.Unix(0, *w.PowerFailureTimestamp).UTC()
		r.FailureOnset = &onset
	}
	return r, nil
}
