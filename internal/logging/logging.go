// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
)

// SyslogTag identifies the daemon in the system log.
const SyslogTag = "upsd"

// Config is the logging config.
type Config struct {
	Level  string // logrus level name
	Debug  bool   // overrides Level
	Syslog bool   // also send entries to the local syslog daemon
}

// utcFormatter stamps every entry in UTC.
type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return f.Formatter.Format(e)
}

// New builds the process logger writing to out.
func New(cfg Config, out io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}
	if cfg.Debug {
		level = logrus.DebugLevel
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(utcFormatter{&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000Z",
		DisableColors:   !isTerminal(out),
	}})

	if cfg.Syslog {
		hook, err := lsyslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_DAEMON, SyslogTag)
		if err != nil {
			return nil, fmt.Errorf("logging: syslog: %w", err)
		}
		log.AddHook(hook)
	}
	return log, nil
}

// Component tags a logger with the package that uses it.
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
