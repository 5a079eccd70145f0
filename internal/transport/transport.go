// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/bus"
	"github.com/tamzrod/upsplus-daemon/internal/retry"
)

// RegisterFileSize is the size of the UPS MCU register file (0x00..0xFF).
const RegisterFileSize = 0xFF + 1

// TransportError reports a register operation that failed every attempt.
type TransportError struct {
	Op       string // "read" or "write"
	Register int
	Length   int
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s register 0x%02X length %d failed after %d attempts: %v",
		e.Op, e.Register, e.Length, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Config is the minimal transport config.
type Config struct {
	Address uint8 // UPS MCU slave address
	Retry   retry.Policy
}

// Transport reads and writes byte ranges of one device's register file.
// Requests are split into bus.MaxTransfer chunks; a failed chunk retries the
// whole logical operation. Nothing is cached between calls.
type Transport struct {
	bus  bus.Bus
	addr uint8
	rp   retry.Policy
	log  logrus.FieldLogger
}

func New(cfg Config, b bus.Bus, log logrus.FieldLogger) (*Transport, error) {
	if b == nil {
		return nil, errors.New("transport: bus required")
	}
	if cfg.Address > 0x7F {
		return nil, fmt.Errorf("transport: address 0x%x is not 7-bit", cfg.Address)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	rp := cfg.Retry
	if rp.Log == nil {
		rp.Log = log
	}
	return &Transport{bus: b, addr: cfg.Address, rp: rp, log: log}, nil
}

// Read returns length bytes starting at register.
func (t *Transport) Read(register, length int) ([]byte, error) {
	if err := checkRange(register, length); err != nil {
		return nil, err
	}

	var out []byte
	op := fmt.Sprintf("read UPS register[0x%02X] length[%d]", register, length)

	err := t.rp.Do(op, func() error {
		buf := make([]byte, length)
		for off := 0; off < length; off += bus.MaxTransfer {
			n := min(length-off, bus.MaxTransfer)
			if err := t.bus.ReadBlock(t.addr, uint8(register+off), buf[off:off+n]); err != nil {
				return err
			}
		}
		out = buf
		return nil
	})
	if err != nil {
		return nil, t.wrap("read", register, length, err)
	}
	return out, nil
}

// Write stores data starting at register.
func (t *Transport) Write(register int, data []byte) error {
	if err := checkRange(register, len(data)); err != nil {
		return err
	}

	op := fmt.Sprintf("write UPS register[0x%02X] values[%s]", register, hexString(data))

	err := t.rp.Do(op, func() error {
		for off := 0; off < len(data); off += bus.MaxTransfer {
			n := min(len(data)-off, bus.MaxTransfer)
			if err := t.bus.WriteBlock(t.addr, uint8(register+off), data[off:off+n]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return t.wrap("write", register, len(data), err)
	}
	return nil
}

// WriteSingle stores a single register.
func (t *Transport) WriteSingle(register int, v byte) error {
	return t.Write(register, []byte{v})
}

func (t *Transport) wrap(op string, register, length int, err error) error {
	te := &TransportError{Op: op, Register: register, Length: length, Err: err}
	var ex *retry.ExhaustedError
	if errors.As(err, &ex) {
		te.Attempts = ex.Attempts
		te.Err = ex.Err
	}
	return te
}

func checkRange(register, length int) error {
	if length <= 0 {
		return fmt.Errorf("transport: length %d must be > 0", length)
	}
	if register < 0 || register+length > RegisterFileSize {
		return fmt.Errorf("transport: register 0x%02X length %d outside register file", register, length)
	}
	return nil
}

func hexString(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
