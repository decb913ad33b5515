// Package diag is the diagnostics sink the naming engine reports anomalies
// to. Sinks record or log; they never stop the caller.
package diag

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives anomaly reports. Warn is for recoverable modeling issues,
// Fail for elements that could not be named.
type Sink interface {
	Warn(msg string, attrs ...slog.Attr)
	Fail(msg string, attrs ...slog.Attr)
}

// ---------------------------------------------------------------------------
// slog
// ---------------------------------------------------------------------------

// Logger forwards diagnostics to a slog.Logger: warnings at Warn level and
// failures at Error level.
type Logger struct {
	log *slog.Logger
}

// NewLogger wraps l. A nil l uses slog.Default().
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (s *Logger) Warn(msg string, attrs ...slog.Attr) {
	s.log.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

func (s *Logger) Fail(msg string, attrs ...slog.Attr) {
	s.log.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// ---------------------------------------------------------------------------
// Nop
// ---------------------------------------------------------------------------

type nop struct{}

func (nop) Warn(string, ...slog.Attr) {}
func (nop) Fail(string, ...slog.Attr) {}

// Nop discards everything.
var Nop Sink = nop{}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// Level distinguishes recorded entries.
type Level int

const (
	LevelWarn Level = iota
	LevelFail
)

func (l Level) String() string {
	if l == LevelFail {
		return "fail"
	}
	return "warn"
}

// Entry is one recorded diagnostic.
type Entry struct {
	Level   Level
	Message string
	Attrs   []slog.Attr
}

// Attr returns the value of the named attribute, or an empty value.
func (e Entry) Attr(key string) slog.Value {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return slog.Value{}
}

// Recorder keeps every diagnostic in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Warn(msg string, attrs ...slog.Attr) { r.add(LevelWarn, msg, attrs) }
func (r *Recorder) Fail(msg string, attrs ...slog.Attr) { r.add(LevelFail, msg, attrs) }

func (r *Recorder) add(l Level, msg string, attrs []slog.Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: l, Message: msg, Attrs: attrs})
}

// Entries returns a copy of the recorded diagnostics.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many entries of level l were recorded.
func (r *Recorder) Count(l Level) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == l {
			n++
		}
	}
	return n
}

// Tee fans diagnostics out to several sinks.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Warn(msg string, attrs ...slog.Attr) {
	for _, s := range t {
		s.Warn(msg, attrs...)
	}
}

func (t tee) Fail(msg string, attrs ...slog.Attr) {
	for _, s := range t {
		s.Fail(msg, attrs...)
	}
}

var (
	_ Sink = (*Logger)(nil)
	_ Sink = (*Recorder)(nil)
	_ Sink = tee(nil)
)
