// Package logging provides the small structured logger used by the
// server and batch paths. CLI output for humans goes to stdout/stderr
// directly; this logger is for machine-readable operational logs.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is a deliberately small logging interface so callers never
// depend on a concrete backend.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with a different component name
	With(component string) Logger
}

// Field is a key/value pair attached to a log entry
type Field struct {
	Key   string
	Value any
}

// F builds a field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// JSONLogger prints one JSON object per line. Safe for concurrent use.
type JSONLogger struct {
	component string
	out       io.Writer
	mu        *sync.Mutex
}

// NewJSONLogger creates a logger writing to stderr
func NewJSONLogger(component string) *JSONLogger {
	return NewJSONLoggerTo(os.Stderr, component)
}

// NewJSONLoggerTo creates a logger writing to the given writer
func NewJSONLoggerTo(out io.Writer, component string) *JSONLogger {
	return &JSONLogger{
		component: component,
		out:       out,
		mu:        &sync.Mutex{},
	}
}

func (l *JSONLogger) log(level, msg string, fields []Field) {
	type entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}

	var m map[string]any
	if len(fields) > 0 {
		m = make(map[string]any, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
	}

	e := entry{
		Level:     level,
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}

	line, err := json.Marshal(e)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		fmt.Fprintf(l.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(l.out, string(line))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log("error", msg, fields) }

// With returns a child logger sharing the writer and lock
func (l *JSONLogger) With(component string) Logger {
	return &JSONLogger{component: component, out: l.out, mu: l.mu}
}

// Nop discards everything. Used by the CLI paths where human-facing
// output is written directly.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(string) Logger   { return n }
