// Package trace provides the run logger: human-readable request/response
// tracing mirrored to the console and to any attached UI sink.
package trace

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SinkFunc receives one rendered log line. UI panes attach these to stream
// log output next to the progress display.
type SinkFunc func(line string)

// sinkWriter adapts a SinkFunc to io.Writer, splitting on newlines.
type sinkWriter struct {
	mu sync.Mutex
	fn SinkFunc
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			w.fn(string(line))
		}
	}
	return len(p), nil
}

// Logger wraps zerolog with a debug toggle and attachable UI sinks.
type Logger struct {
	mu      sync.Mutex
	log     zerolog.Logger
	console io.Writer
	sinks   []*sinkWriter
	debug   bool
}

// New returns a Logger writing to stderr. When debug is false, Debug lines
// are suppressed but Info/Warn/Error still flow to every sink.
func New(debug bool) *Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return newLogger(console, debug)
}

// NewWithWriter is New with an explicit console writer (used by tests).
func NewWithWriter(w io.Writer, debug bool) *Logger {
	return newLogger(w, debug)
}

func newLogger(console io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	l := &Logger{console: console, debug: debug}
	l.log = zerolog.New(console).Level(level).With().Timestamp().Logger()
	return l
}

// AttachSink adds a UI sink that receives every rendered line from now on.
func (l *Logger) AttachSink(fn SinkFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sinks = append(l.sinks, &sinkWriter{fn: fn})
	l.rebuild()
}

// SetDebug switches request/response tracing on or off at runtime.
func (l *Logger) SetDebug(debug bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.debug = debug
	l.rebuild()
}

// rebuild reassembles the underlying logger from the console writer, the
// attached sinks and the current level. Callers hold l.mu.
func (l *Logger) rebuild() {
	writers := make([]io.Writer, 0, len(l.sinks)+1)
	writers = append(writers, l.console)
	for _, s := range l.sinks {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        s,
			TimeFormat: "15:04:05",
			NoColor:    true,
		})
	}

	level := zerolog.InfoLevel
	if l.debug {
		level = zerolog.DebugLevel
	}
	l.log = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}

// Debug logs a debug-level line (suppressed unless the debug flag is set).
func (l *Logger) Debug(msg string, kv ...any) { l.event(l.log.Debug(), msg, kv) }

// Info logs an info-level line.
func (l *Logger) Info(msg string, kv ...any) { l.event(l.log.Info(), msg, kv) }

// Warn logs a warning.
func (l *Logger) Warn(msg string, kv ...any) { l.event(l.log.Warn(), msg, kv) }

// Error logs an error.
func (l *Logger) Error(msg string, kv ...any) { l.event(l.log.Error(), msg, kv) }

// Request traces one outgoing API call.
func (l *Logger) Request(method, url string) {
	l.Debug("request", "method", method, "url", url)
}

// Response traces the outcome of one API call.
func (l *Logger) Response(method, url string, status int, elapsed time.Duration, size int) {
	l.Debug("response",
		"method", method,
		"url", url,
		"status", status,
		"elapsed", elapsed.String(),
		"bytes", size,
	)
}

func (l *Logger) event(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() *Logger {
	return newLogger(io.Discard, false)
}
