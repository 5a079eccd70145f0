// internal/bus/mem.go
package bus

import (
	"errors"
	"sync"
)

// ErrInjected is returned by Mem for injected faults.
var ErrInjected = errors.New("bus mem: injected fault")

// Write records one WriteBlock call against a Mem bus.
type Write struct {
	Addr uint8
	Reg  uint8
	Data []byte
}

// Mem is an in-memory bus holding one 256-byte register file per slave.
// Transfers running past register 0xFF fail with ErrTransferSize.
//
// Slaves attached with AttachWords are register-pointer chips instead:
// each pointer selects an independent 16-bit word and every transfer
// against them MUST be exactly 2 bytes.
type Mem struct {
	mu     sync.Mutex
	files  map[uint8]*[256]byte
	words  map[uint8]map[uint8][2]byte
	writes []Write
	closed bool

	// FailReads and FailWrites make the next N transactions fail.
	FailReads  int
	FailWrites int

	reads int
}

func NewMem() *Mem {
	return &Mem{
		files: make(map[uint8]*[256]byte),
		words: make(map[uint8]map[uint8][2]byte),
	}
}

// Attach creates the register file for addr if missing and returns it for
// direct manipulation.
func (m *Mem) Attach(addr uint8) *[256]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[addr]
	if !ok {
		f = new([256]byte)
		m.files[addr] = f
	}
	return f
}

// AttachWords registers addr as a word-register slave. A byte file
// attached at the same address is shadowed.
func (m *Mem) AttachWords(addr uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.words[addr]; !ok {
		m.words[addr] = make(map[uint8][2]byte)
	}
}

// LoadWord stores v (big-endian, as the chip presents it) at pointer reg.
func (m *Mem) LoadWord(addr, reg uint8, v uint16) {
	m.AttachWords(addr)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr][reg] = [2]byte{byte(v >> 8), byte(v)}
}

// Word returns the word held at pointer reg of a word-register slave.
func (m *Mem) Word(addr, reg uint8) (uint16, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.words[addr][reg]
	return uint16(w[0])<<8 | uint16(w[1]), ok
}

// Load copies data into the register file of addr starting at reg.
func (m *Mem) Load(addr, reg uint8, data []byte) {
	f := m.Attach(addr)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(f[int(reg):], data)
}

func (m *Mem) ReadBlock(addr, reg uint8, buf []byte) error {
	if err := checkSize(len(buf)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.reads++
	if m.FailReads > 0 {
		m.FailReads--
		return ErrInjected
	}
	if words, ok := m.words[addr]; ok {
		if len(buf) != 2 {
			return ErrTransferSize
		}
		w := words[reg]
		copy(buf, w[:])
		return nil
	}
	f, ok := m.files[addr]
	if !ok {
		return ErrNoDevice
	}
	if int(reg)+len(buf) > len(f) {
		return ErrTransferSize
	}
	copy(buf, f[int(reg):])
	return nil
}

func (m *Mem) WriteBlock(addr, reg uint8, data []byte) error {
	if err := checkSize(len(data)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.FailWrites > 0 {
		m.FailWrites--
		return ErrInjected
	}
	if words, ok := m.words[addr]; ok {
		if len(data) != 2 {
			return ErrTransferSize
		}
		words[reg] = [2]byte{data[0], data[1]}
	} else {
		f, ok := m.files[addr]
		if !ok {
			return ErrNoDevice
		}
		if int(reg)+len(data) > len(f) {
			return ErrTransferSize
		}
		copy(f[int(reg):], data)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	m.writes = append(m.writes, Write{Addr: addr, Reg: reg, Data: cp})
	return nil
}

// Writes returns every successful write in order.
func (m *Mem) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Write, len(m.writes))
	copy(out, m.writes)
	return out
}

// Reads returns the number of read transactions attempted.
func (m *Mem) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

func (m *Mem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
