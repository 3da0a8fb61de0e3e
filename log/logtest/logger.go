// Package logtest implements support for testing Loggers.
package logtest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/who-took-that-photo/log"
)

// DiscardLogger is a Logger that logs nothing.
var DiscardLogger = new(discardLogger)

// NewLogger creates a Logger that records everything written to it.
func NewLogger() *Logger {
	l := Logger{
		buf: new(bytes.Buffer),
	}
	return &l
}

// discardLogger is a logger that logs nothing.
// This is more simple than using the standard log.Logger:New() with the io.Discard writer.
type discardLogger struct{}

var _ log.Logger = DiscardLogger

// Printf implements the log.Logger interface
func (discardLogger) Printf(format string, v ...interface{}) {
	// NOOP
}

// Logger is a logger that writes to a buffer to be read later.
// Each Printf call is written on its own line.
type Logger struct {
	buf *bytes.Buffer
	mu  sync.RWMutex
}

var _ log.Logger = NewLogger()

// Printf implements the log.Logger interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.buf, format, v...)
	l.buf.WriteByte('\n')
}

// String returns the recorded text.
func (l *Logger) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.String()
}

// Contains reports whether the recorded text contains the substring.
func (l *Logger) Contains(substr string) bool {
	return strings.Contains(l.String(), substr)
}

// Empty returns if buffer is empty.
func (l *Logger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.Len() == 0
}

// Reset clears the recorded text.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
}
