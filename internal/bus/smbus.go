// internal/bus/smbus.go
package bus

import (
	"fmt"
	"sync"

	"github.com/platinasystems/i2c"
)

// SMBus implements Bus on a Linux i2c-dev adapter (/dev/i2c-N).
// Single byte transfers use SMBus byte-data, larger ones I2C block-data.
type SMBus struct {
	mu     sync.Mutex
	index  int
	bus    i2c.Bus
	closed bool
}

// OpenSMBus opens adapter index once; the handle is reused for every call.
func OpenSMBus(index int) (*SMBus, error) {
	s := &SMBus{index: index}
	if err := s.bus.Open(index); err != nil {
		return nil, fmt.Errorf("smbus: open i2c-%d: %w", index, err)
	}
	return s, nil
}

func (s *SMBus) ReadBlock(addr, reg uint8, buf []byte) error {
	if err := checkSize(len(buf)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var data i2c.SMBusData
	if err := s.do(i2c.Read, addr, reg, len(buf), &data); err != nil {
		return err
	}

	if len(buf) == 1 {
		buf[0] = data[0]
		return nil
	}
	// block layout: data[0] = count, data[1:] = payload
	copy(buf, data[1:1+len(buf)])
	return nil
}

func (s *SMBus) WriteBlock(addr, reg uint8, data []byte) error {
	if err := checkSize(len(data)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var d i2c.SMBusData
	if len(data) == 1 {
		d[0] = data[0]
	} else {
		d[0] = uint8(len(data))
		copy(d[1:], data)
	}
	return s.do(i2c.Write, addr, reg, len(data), &d)
}

func (s *SMBus) do(rw i2c.RW, addr, reg uint8, n int, data *i2c.SMBusData) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.bus.ForceSlaveAddress(int(addr)); err != nil {
		return fmt.Errorf("smbus: i2c-%d addr 0x%02x: %w", s.index, addr, err)
	}

	size := i2c.ByteData
	if n > 1 {
		size = i2c.I2CBlockData
		data[0] = uint8(n)
	}

	if err := s.bus.Do(rw, reg, size, data); err != nil {
		return fmt.Errorf("smbus: i2c-%d addr 0x%02x reg 0x%02x len %d: %w", s.index, addr, reg, n, err)
	}
	return nil
}

// Close releases the adapter.
func (s *SMBus) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.bus.Close()
}
