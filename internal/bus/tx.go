// internal/bus/tx.go
package bus

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// Tx adapts a Bus to the tinygo driver Tx shape so register-pointer chips
// (INA219 and friends) can be driven the same way on any backend.
//
// Supported shapes:
//
//	w = [reg],        r = n bytes  -> ReadBlock(reg, n)
//	w = [reg, d...],  r = empty    -> WriteBlock(reg, d)
type Tx struct {
	b Bus
}

var _ drivers.I2C = Tx{}

func NewTx(b Bus) Tx { return Tx{b: b} }

func (t Tx) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("bus tx: address 0x%x is not 7-bit", addr)
	}
	if len(w) == 0 {
		return fmt.Errorf("bus tx: register pointer required")
	}

	a := uint8(addr)
	reg := w[0]

	switch {
	case len(r) > 0 && len(w) == 1:
		return t.b.ReadBlock(a, reg, r)
	case len(r) == 0 && len(w) > 1:
		return t.b.WriteBlock(a, reg, w[1:])
	default:
		return fmt.Errorf("bus tx: unsupported transfer w=%d r=%d", len(w), len(r))
	}
}
