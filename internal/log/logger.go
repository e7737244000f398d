package log

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/maps"
)

const scopeKey = "scope"

// Entry is a single log line handed to a Sink.
type Entry struct {
	Time       time.Time         `json:"-"`
	Level      Level             `json:"level"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Message    string            `json:"message"`
}

// Logger writes entries at or above its level to a Sink.
//
// Scope and Sub return a copy, so a Logger can be shared between goroutines.
type Logger struct {
	level      Level
	attributes map[string]string
	sink       Sink
	clock      func() time.Time
}

// New returns a logger writing to sink. Default is treated as Info.
func New(level Level, sink Sink) *Logger {
	if level == Default {
		level = Info
	}
	return &Logger{level: level, sink: sink, clock: time.Now}
}

// Scope tags entries with the component that wrote them.
func (l *Logger) Scope(scope string) *Logger {
	return l.Sub(map[string]string{scopeKey: scope})
}

// Sub returns a logger that adds attributes to every entry.
func (l *Logger) Sub(attributes map[string]string) *Logger {
	out := *l
	out.attributes = make(map[string]string, len(l.attributes)+len(attributes))
	maps.Copy(out.attributes, l.attributes)
	maps.Copy(out.attributes, attributes)
	return &out
}

func (l *Logger) Log(entry Entry) {
	if entry.Level < l.level {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = l.clock()
	}
	if len(l.attributes) > 0 {
		entry.Attributes = l.attributes
	}
	if err := l.sink.Log(entry); err != nil {
		fmt.Fprintf(os.Stderr, "bundlepay:log: failed to log entry: %v\n", err)
	}
}

func (l *Logger) logf(level Level, format string, args []any) {
	if level < l.level {
		return
	}
	l.Log(Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Tracef(format string, args ...any) { l.logf(Trace, format, args) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args) }
