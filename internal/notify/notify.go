// Package notify delivers transient, user-visible notices: the end-of-cycle
// summary and individual error reports.
package notify

import (
	"log/slog"
	"time"
)

// Level indicates notice severity.
type Level string

// Severity levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a fire-and-forget, auto-dismissing user message.
type Notice struct {
	Level   Level         `json:"level"`
	Message string        `json:"message"`
	// Duration is a display hint for the UI; zero means the sink default.
	Duration time.Duration `json:"duration,omitempty"`
}

// Notifier delivers a notice. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a plain function to the Notifier interface.
type Func func(Notice)

// Notify implements Notifier.
func (f Func) Notify(n Notice) { f(n) }

// Log is a Notifier that writes notices to a slog logger.
type Log struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l Log) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		l.Logger.Error(n.Message)
	case LevelWarning:
		l.Logger.Warn(n.Message)
	default:
		l.Logger.Info(n.Message)
	}
}

// Multi fans a notice out to every sink in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notice) {
	for _, sink := range m {
		sink.Notify(n)
	}
}
