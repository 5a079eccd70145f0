// internal/status/store.go
package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/upsplus-daemon/internal/retry"
)

// DefaultPath is where the daemon keeps its checkpoint.
const DefaultPath = "/var/lib/upsplus/status.json"

// Store persists the last decision between runs.
//
// Load never fails: any unreadable or invalid record is deleted and
// reported as absent. Save failures delete the record too, so a half
// written or stale checkpoint is never trusted on the next run.
type Store interface {
	Load() *Record
	Save(r Record) error
	Delete(reason string)
}

// Config is the file store config.
type Config struct {
	Path       string
	Retry      retry.Policy
	LogOnRead  bool
	LogOnWrite bool
}

// FileStore keeps the record in a single JSON file, replaced atomically.
type FileStore struct {
	path       string
	rp         retry.Policy
	logOnRead  bool
	logOnWrite bool
	log        logrus.FieldLogger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(cfg Config, log logrus.FieldLogger) (*FileStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("status: path required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	rp := cfg.Retry
	if rp.Log == nil {
		rp.Log = log
	}
	return &FileStore{
		path:       cfg.Path,
		rp:         rp,
		logOnRead:  cfg.LogOnRead,
		logOnWrite: cfg.LogOnWrite,
		log:        log,
	}, nil
}

// Path returns the status file location.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored record, or nil when none can be trusted.
func (s *FileStore) Load() *Record {
	var b []byte
	missing := false

	err := s.rp.Do(fmt.Sprintf("read status file %s", s.path), func() error {
		var err error
		b, err = os.ReadFile(s.path)
		if errors.Is(err, os.ErrNotExist) {
			missing = true
			return nil
		}
		return err
	})
	if missing {
		return nil
	}

	var r Record
	if err == nil {
		r, err = Decode(b)
	}
	if err != nil {
		s.log.WithError(err).Warn("status file unusable")
		s.Delete("")
		return nil
	}

	if s.logOnRead {
		s.log.WithFields(logrus.Fields{
			"time":  FormatTime(r.At),
			"input": r.Input.String(),
			"vbat":  r.BatteryVoltage,
		}).Info("status loaded")
	}
	return &r
}

// Save replaces the record atomically.
func (s *FileStore) Save(r Record) error {
	b, err := Encode(r)
	if err != nil {
		s.Delete("")
		return fmt.Errorf("status: encode: %w", err)
	}

	err = s.rp.Do(fmt.Sprintf("write status file %s", s.path), func() error {
		return writeAtomic(s.path, b)
	})
	if err != nil {
		s.Delete("")
		return err
	}

	if s.logOnWrite {
		s.log.WithFields(logrus.Fields{
			"time":  FormatTime(r.At),
			"input": r.Input.String(),
			"vbat":  r.BatteryVoltage,
		}).Info("status saved")
	}
	return nil
}

// Delete removes the record. An empty reason marks a fail-safe removal.
func (s *FileStore) Delete(reason string) {
	if reason == "" {
		reason = "fail safe"
	}
	err := os.Remove(s.path)
	switch {
	case err == nil:
		s.log.WithField("reason", reason).Info("status file deleted")
	case errors.Is(err, os.ErrNotExist):
		// nothing to delete
	default:
		s.log.WithError(err).WithField("reason", reason).Error("status file delete failed")
	}
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
