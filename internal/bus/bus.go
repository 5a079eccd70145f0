// internal/bus/bus.go
package bus

import "errors"

// MaxTransfer is the per-transaction byte limit of an SMBus block transfer.
const MaxTransfer = 32

// Bus is a register-addressed I2C bus.
// Geometry only: one call is one bus transaction against one slave.
// len(buf) and len(data) MUST be in [1, MaxTransfer].
type Bus interface {
	ReadBlock(addr, reg uint8, buf []byte) error
	WriteBlock(addr, reg uint8, data []byte) error
	Close() error
}

var (
	ErrClosed       = errors.New("bus: closed")
	ErrTransferSize = errors.New("bus: transfer size out of range")
	ErrNoDevice     = errors.New("bus: no device at address")
)

func checkSize(n int) error {
	if n < 1 || n > MaxTransfer {
		return ErrTransferSize
	}
	return nil
}
