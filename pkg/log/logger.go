package log

import "sync/atomic"

// Logger is the interface add-ons implement to receive structured
// events. Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent
	// use and should return quickly; blocking slows the add-on.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MultiLogger fans each event out to every configured logger, e.g.
// console output next to a log file.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger over the given loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to every logger, in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// SwitchLogger forwards events to an inner logger while enabled and
// discards them while disabled. Toggling is safe from any goroutine.
type SwitchLogger struct {
	inner   Logger
	enabled atomic.Bool
}

// NewSwitchLogger creates a disabled SwitchLogger around inner.
func NewSwitchLogger(inner Logger) *SwitchLogger {
	return &SwitchLogger{inner: inner}
}

// Toggle flips the switch and returns the new state.
func (s *SwitchLogger) Toggle() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetEnabled sets the switch state.
func (s *SwitchLogger) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// Enabled reports the switch state.
func (s *SwitchLogger) Enabled() bool {
	return s.enabled.Load()
}

// Log forwards the event when enabled.
func (s *SwitchLogger) Log(event Event) {
	if s.enabled.Load() {
		s.inner.Log(event)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
	_ Logger = (*SwitchLogger)(nil)
)
