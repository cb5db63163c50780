// Package logging builds the logrus logger shared by the store and the
// command-line tool.
//
// Output format is one line per entry:
//
//	[2006-01-02 15:04:05] [info] message key=value ...
//
// Library code that does pure hashing or encoding never logs; only
// components with I/O (the index store, the CLI) accept a logger.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = logrus.WarnLevel

// LineFormatter renders entries as a single bracketed line.
type LineFormatter struct{}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	fmt.Fprintf(b, "[%s] [%s] %s", timestamp, entry.Level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// ParseLevel parses a level name, falling back to DefaultLevel for an
// empty string.
func ParseLevel(name string) (logrus.Level, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return DefaultLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New creates a logger writing to w at the given level.
func New(level logrus.Level, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&LineFormatter{})
	return log
}

// Discard returns a logger that drops everything, for tests and callers
// that do not care.
func Discard() *logrus.Logger {
	return New(logrus.PanicLevel, io.Discard)
}
