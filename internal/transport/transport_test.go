// internal/transport/transport_test.go
package transport

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tamzrod/upsplus-daemon/internal/bus"
	"github.com/tamzrod/upsplus-daemon/internal/retry"
)

const upsAddr = 0x17

func newTransport(t *testing.T, m *bus.Mem, attempts int) *Transport {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tr, err := New(Config{
		Address: upsAddr,
		Retry: retry.Policy{
			Attempts: attempts,
			Delay:    2 * time.Second,
			Sleep:    func(time.Duration) {},
		},
	}, m, logger)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return tr
}

func TestRead_ChunksFullRegisterFile(t *testing.T) {
	m := bus.NewMem()
	f := m.Attach(upsAddr)
	for i := range f {
		f[i] = byte(i)
	}

	tr := newTransport(t, m, 10)

	got, err := tr.Read(0, RegisterFileSize)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if len(got) != RegisterFileSize {
		t.Fatalf("expected %d bytes, got %d", RegisterFileSize, len(got))
	}
	for i, v := range got {
		if v != byte(i) {
			t.Fatalf("byte %d: got 0x%02X want 0x%02X", i, v, byte(i))
		}
	}
	// 256 / 32 = 8 transactions
	if m.Reads() != 8 {
		t.Fatalf("expected 8 chunked reads, got %d", m.Reads())
	}
}

func TestRead_RetriesWholeOperation(t *testing.T) {
	m := bus.NewMem()
	m.Load(upsAddr, 0x07, []byte{0x88, 0x13, 0x00, 0x00})
	m.FailReads = 3

	tr := newTransport(t, m, 10)

	got, err := tr.Read(0x07, 4)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if !bytes.Equal(got, []byte{0x88, 0x13, 0x00, 0x00}) {
		t.Fatalf("got % X", got)
	}
	if m.Reads() != 4 {
		t.Fatalf("expected 4 read attempts, got %d", m.Reads())
	}
}

func TestRead_ExhaustedIsTaggedTransportError(t *testing.T) {
	m := bus.NewMem()
	m.Attach(upsAddr)
	m.FailReads = 100

	tr := newTransport(t, m, 10)

	_, err := tr.Read(0x00, RegisterFileSize)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Op != "read" || te.Register != 0 || te.Length != RegisterFileSize || te.Attempts != 10 {
		t.Fatalf("unexpected tags: %+v", te)
	}
	if !errors.Is(err, bus.ErrInjected) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if m.Reads() != 10 {
		t.Fatalf("expected 10 attempts, got %d", m.Reads())
	}
}

func TestWrite_DistributesChunksInAddressOrder(t *testing.T) {
	m := bus.NewMem()
	m.Attach(upsAddr)

	tr := newTransport(t, m, 1)

	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(0xA0 + i)
	}
	if err := tr.Write(0x10, data); err != nil {
		t.Fatalf("Write err=%v", err)
	}

	w := m.Writes()
	if len(w) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(w))
	}
	if w[0].Reg != 0x10 || len(w[0].Data) != 32 {
		t.Fatalf("chunk 0: reg=0x%02X len=%d", w[0].Reg, len(w[0].Data))
	}
	if w[1].Reg != 0x30 || len(w[1].Data) != 8 {
		t.Fatalf("chunk 1: reg=0x%02X len=%d", w[1].Reg, len(w[1].Data))
	}
	if w[1].Data[0] != data[32] {
		t.Fatalf("chunk 1 starts with 0x%02X want 0x%02X", w[1].Data[0], data[32])
	}
}

func TestWriteSingle(t *testing.T) {
	m := bus.NewMem()
	m.Attach(upsAddr)
	tr := newTransport(t, m, 1)

	if err := tr.WriteSingle(0x18, 30); err != nil {
		t.Fatalf("WriteSingle err=%v", err)
	}
	if f := m.Attach(upsAddr); f[0x18] != 30 {
		t.Fatalf("register 0x18 = %d want 30", f[0x18])
	}
}

func TestWrite_ExhaustedIsTaggedTransportError(t *testing.T) {
	m := bus.NewMem()
	m.Attach(upsAddr)
	m.FailWrites = 100

	tr := newTransport(t, m, 3)

	err := tr.Write(0x11, []byte{0xAC, 0x0D})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Op != "write" || te.Register != 0x11 || te.Length != 2 || te.Attempts != 3 {
		t.Fatalf("unexpected tags: %+v", te)
	}
}

func TestRangeRejectedWithoutBusAccess(t *testing.T) {
	m := bus.NewMem()
	m.Attach(upsAddr)
	tr := newTransport(t, m, 10)

	if _, err := tr.Read(0xF0, 32); err == nil {
		t.Fatalf("expected error past 0xFF")
	}
	if _, err := tr.Read(0, 0); err == nil {
		t.Fatalf("expected error for zero length")
	}
	if err := tr.Write(0x00, nil); err == nil {
		t.Fatalf("expected error for empty write")
	}
	if m.Reads() != 0 {
		t.Fatalf("bus touched %d times", m.Reads())
	}
}
