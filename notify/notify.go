// Package notify delivers fire-and-forget user-facing notifications.
// The host decides how they are displayed; the default sink writes them
// to the structured log.
package notify

import "log/slog"

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// Func adapts a function to the Notifier interface.
type Func func(message string)

// Notify calls f(message).
func (f Func) Notify(message string) { f(message) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a Notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message at info level.
func (n *LogNotifier) Notify(message string) {
	n.logger.Info("notification", "message", message)
}
