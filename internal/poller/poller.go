// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/frame"
	"github.com/tamzrod/upsplus-daemon/internal/retry"
	"github.com/tamzrod/upsplus-daemon/internal/sense"
)

// RegisterReader abstracts the UPS register file reads the poller needs.
// *transport.Transport satisfies it; it retries on its own.
type RegisterReader interface {
	Read(register, length int) ([]byte, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval       time.Duration // cheap power-input read period
	StatusInterval time.Duration // forced full poll period
	Retry          retry.Policy  // sense channel reads and status decode

	// Now replaces time.Now (tests).
	Now func() time.Time
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg     Config
	regs    RegisterReader
	output  sense.Reader
	battery sense.Reader
	log     logrus.FieldLogger
}

// New creates a poller with immutable config.
func New(cfg Config, regs RegisterReader, output, battery sense.Reader, log logrus.FieldLogger) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.StatusInterval < 0 {
		return nil, errors.New("poller: status interval must be >= 0")
	}
	if regs == nil {
		return nil, errors.New("poller: register reader required")
	}
	if output == nil || battery == nil {
		return nil, errors.New("poller: output and battery sense channels required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Retry.Log == nil {
		cfg.Retry.Log = log
	}
	return &Poller{cfg: cfg, regs: regs, output: output, battery: battery, log: log}, nil
}

// PollOnce performs exactly one full poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: p.cfg.Now()}

	out, err := p.readSense("output", p.output)
	if err != nil {
		res.Err = err
		return res
	}
	bat, err := p.readSense("battery", p.battery)
	if err != nil {
		res.Err = err
		return res
	}

	s, err := p.readStatus()
	if err != nil {
		res.Err = err
		return res
	}

	// Commit only if all reads succeeded
	s.Output = out
	s.Battery = bat
	res.Status = &s
	return res
}

// readStatus reads and decodes the full register frame. A frame that fails
// decoding is read again under the retry policy; bus errors are not, the
// register reader has already retried them.
func (p *Poller) readStatus() (frame.UpsStatus, error) {
	var (
		s       frame.UpsStatus
		readErr error
	)
	err := p.cfg.Retry.Do("read UPS status", func() error {
		raw, err := p.regs.Read(0, frame.FrameSize)
		if err != nil {
			readErr = err
			return nil
		}
		s, err = frame.Decode(raw)
		return err
	})
	if readErr != nil {
		return frame.UpsStatus{}, fmt.Errorf("poller: read status: %w", readErr)
	}
	if err != nil {
		return frame.UpsStatus{}, fmt.Errorf("poller: decode status: %w", err)
	}
	return s, nil
}

// PowerInput performs the cheap input-voltage read.
func (p *Poller) PowerInput() (frame.PowerInput, error) {
	raw, err := p.regs.Read(frame.PowerInputRegister, frame.PowerInputSize)
	if err != nil {
		return frame.PowerInput{}, fmt.Errorf("poller: read power input: %w", err)
	}
	return frame.DecodePowerInput(raw)
}

func (p *Poller) readSense(name string, r sense.Reader) (sense.Reading, error) {
	var v sense.Reading
	err := p.cfg.Retry.Do(fmt.Sprintf("read INA219 %s", name), func() error {
		var err error
		v, err = r.Read()
		return err
	})
	if err != nil {
		return sense.Reading{}, fmt.Errorf("poller: read %s sense: %w", name, err)
	}
	return v, nil
}
