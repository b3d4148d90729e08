// Package logging provides the structured run logger for the pipeline.
//
// Every entry carries a timestamp, severity, and the file:line of the call
// site, followed by the message. Callers prepend entity context in-message
// ([PS: name], [SID: sid], [PR: principal]) so a failing run can be traced to
// the template that caused it. When debug mode is enabled the logger also
// records one entry per AWS API call with service, operation, duration, and
// result.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARNING"
	LevelError Level = "ERROR"
)

// Logger writes line-oriented structured log entries. Safe for use from a
// single goroutine per run; the mutex only guards interleaving with debug
// API-call entries.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	debug bool
}

// New creates a Logger writing to w. Pass nil to use os.Stderr. When debug is
// true, APICall entries are emitted; otherwise they are dropped.
func New(w io.Writer, debug bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{w: w, debug: debug}
}

// Infof logs at INFO severity.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warnf logs at WARNING severity.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Errorf logs at ERROR severity.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

// APICall records a single remote call when debug mode is enabled. Result is
// "success" or "error" depending on err.
func (l *Logger) APICall(service, operation string, duration time.Duration, err error) {
	if !l.debug {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	l.logf(LevelInfo, "[API] %s.%s %dms %s", service, operation, duration.Milliseconds(), result)
}

// logf formats and writes one entry. The caller frame reported is two levels
// up: the caller of Infof/Warnf/Errorf.
func (l *Logger) logf(level Level, format string, args ...any) {
	_, file, line, ok := runtime.Caller(2)
	caller := "???:0"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	ts := time.Now().Format("2006-01-02:15:04:05.000")
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %-8s [%s] %s\n", ts, level, caller, msg)
}
