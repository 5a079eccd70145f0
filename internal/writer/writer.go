// internal/writer/writer.go
package writer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
)

// registerClient is the exact contract the writer uses.
// *transport.Transport satisfies it.
type registerClient interface {
	Write(register int, data []byte) error
	WriteSingle(register int, v byte) error
}

// Writer owns the writable configuration registers of the UPS MCU.
type Writer struct {
	cli registerClient
	log logrus.FieldLogger
}

func New(cli registerClient, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{cli: cli, log: log}
}

// SetBatteryProtectionVoltage stores the cut-off voltage (volts, 2 bytes LE mV).
func (w *Writer) SetBatteryProtectionVoltage(volts float64) error {
	if volts < 0 || volts > 4.5 {
		return fmt.Errorf("writer: battery protection voltage %.2f out of range [0, 4.5]", volts)
	}
	return w.cli.Write(frame.RegBatteryProtectionVoltage, frame.MillivoltsLE(volts))
}

// SetSamplePeriod stores the MCU sample period in minutes (2 bytes LE).
func (w *Writer) SetSamplePeriod(minutes int) error {
	if minutes < 1 || minutes > 1440 {
		return fmt.Errorf("writer: sample period %d out of range [1, 1440]", minutes)
	}
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(minutes))
	return w.cli.Write(frame.RegSamplePeriod, b)
}

// SetShutdownCountdown arms (or clears with 0) the hardware power-off countdown.
func (w *Writer) SetShutdownCountdown(seconds int) error {
	if seconds < 0 || seconds > 255 {
		return fmt.Errorf("writer: shutdown countdown %d out of range [0, 255]", seconds)
	}
	return w.cli.WriteSingle(frame.RegShutdownCountdown, byte(seconds))
}

// SetAutoPowerOn controls whether the UPS powers the host when input returns.
func (w *Writer) SetAutoPowerOn(on bool) error {
	var v byte
	if on {
		v = 1
	}
	return w.cli.WriteSingle(frame.RegAutoPowerOn, v)
}

// SetRestartCountdown arms (or clears with 0) the hardware restart countdown.
func (w *Writer) SetRestartCountdown(seconds int) error {
	if seconds < 0 || seconds > 255 {
		return fmt.Errorf("writer: restart countdown %d out of range [0, 255]", seconds)
	}
	return w.cli.WriteSingle(frame.RegRestartCountdown, byte(seconds))
}

func millivolts(volts float64) int {
	return int(math.Round(volts * 1000))
}
