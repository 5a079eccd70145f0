// internal/bus/modbus.go
package bus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ModbusGateway implements Bus over an I2C-to-Modbus TCP bridge.
// The I2C slave address is the Modbus unit id and every 8-bit device
// register is one holding register; only the low byte is significant.
// It serializes requests because it mutates SlaveId per call.
type ModbusGateway struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type ModbusConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewModbusGateway(cfg ModbusConfig) (*ModbusGateway, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("bus modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("bus modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &ModbusGateway{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (g *ModbusGateway) ReadBlock(addr, reg uint8, buf []byte) error {
	if err := checkSize(len(buf)); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.handler.SlaveId = addr

	raw, err := g.client.ReadHoldingRegisters(uint16(reg), uint16(len(buf)))
	if err != nil {
		return fmt.Errorf("bus modbus: unit %d read reg 0x%02x len %d: %w", addr, reg, len(buf), err)
	}
	return unpackLowBytes(raw, buf)
}

func (g *ModbusGateway) WriteBlock(addr, reg uint8, data []byte) error {
	if err := checkSize(len(data)); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.handler.SlaveId = addr

	_, err := g.client.WriteMultipleRegisters(uint16(reg), uint16(len(data)), packLowBytes(data))
	if err != nil {
		return fmt.Errorf("bus modbus: unit %d write reg 0x%02x len %d: %w", addr, reg, len(data), err)
	}
	return nil
}

func (g *ModbusGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handler.Close()
}

// packLowBytes widens each byte into one big-endian holding register.
func packLowBytes(data []byte) []byte {
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[2*i+1] = b
	}
	return out
}

// unpackLowBytes takes the low byte of each big-endian holding register.
func unpackLowBytes(raw []byte, buf []byte) error {
	if len(raw) != 2*len(buf) {
		return fmt.Errorf("bus modbus: short response: got %d bytes want %d", len(raw), 2*len(buf))
	}
	for i := range buf {
		buf[i] = raw[2*i+1]
	}
	return nil
}
