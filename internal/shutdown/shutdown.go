// internal/shutdown/shutdown.go
package shutdown

import (
	"errors"
	"fmt"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// DefaultCommand powers the host off.
const DefaultCommand = "sudo shutdown -h now"

// CountdownSetter arms the hardware power-off countdown.
// *writer.Writer satisfies it.
type CountdownSetter interface {
	SetShutdownCountdown(seconds int) error
}

// Config is the shutdown executor config.
type Config struct {
	Command   string
	Countdown int // seconds, 0..255
}

// Executor performs the irreversible shutdown.
type Executor struct {
	argv      []string
	countdown int
	ups       CountdownSetter
	log       logrus.FieldLogger

	// replaced in tests
	run          func(argv []string) error
	block        func()
	resetSignals func()
}

// New splits the command with shell-word rules once, at start-up.
func New(cfg Config, ups CountdownSetter, log logrus.FieldLogger) (*Executor, error) {
	if ups == nil {
		return nil, errors.New("shutdown: countdown setter required")
	}
	if cfg.Countdown < 0 || cfg.Countdown > 255 {
		return nil, fmt.Errorf("shutdown: countdown %d out of range [0, 255]", cfg.Countdown)
	}
	argv, err := shlex.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("shutdown: command %q: %w", cfg.Command, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("shutdown: command required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{
		argv:      argv,
		countdown: cfg.Countdown,
		ups:       ups,
		log:       log,
		run:          runCommand,
		block:        blockForever,
		resetSignals: restoreSignals,
	}, nil
}

// Shutdown arms the UPS countdown, runs the OS command and never returns.
// A countdown write failure does not stop the OS command.
//
// SIGINT and SIGTERM get their default action back before the command
// runs, so the TERM sent by the OS shutdown kills the process.
func (e *Executor) Shutdown(reason string) {
	e.log.WithField("reason", reason).Warn("shutdown on power failure")

	e.log.Warnf("shutdown the UPS after %d seconds", e.countdown)
	if err := e.ups.SetShutdownCountdown(e.countdown); err != nil {
		e.log.WithError(err).Error("arm UPS shutdown countdown failed")
	}

	e.resetSignals()

	e.log.Warnf("shutdown the OS by execute: %s", strings.Join(e.argv, " "))
	if err := e.run(e.argv); err != nil {
		// exit status is ignored
		e.log.WithError(err).Warn("shutdown command returned")
	}

	e.block()
}

func runCommand(argv []string) error {
	// output is not captured
	return exec.Command(argv[0], argv[1:]...).Run()
}

func restoreSignals() {
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
}

func blockForever() {
	for {
		time.Sleep(10 * time.Second)
	}
}
