// Package log builds the logrus.FieldLogger passed down through
// construction to every component, tagging each with its own
// "component" field so a single log stream can be filtered per
// subsystem.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text-formatted logrus logger writing to stderr, color
// disabled so redirected output stays readable. level parses with
// logrus.ParseLevel; an unparseable level falls back to Info.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}

// Component returns a child logger tagged with the given subsystem
// name (cpu, ppu, apu, cartridge, mmu, ...), the pattern every
// constructor in internal/* uses to scope its own log lines.
func Component(log logrus.FieldLogger, name string) logrus.FieldLogger {
	return log.WithField("component", name)
}

// Discard returns a logger that drops everything, for tests that don't
// want emulator log noise but still need to satisfy a FieldLogger
// parameter.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
