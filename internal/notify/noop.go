package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is used
// when no chat backend is configured. Send always reports ErrNoDestination so
// callers never treat a discarded message as delivered.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards messages with a log line.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards msg.
func (n *NoOpNotifier) Send(_ context.Context, dest Destination, msg Message) error {
	n.log.Debug("notification discarded (no backend configured)",
		"room", dest.RoomID,
		"title", msg.Title,
		"bytes", len(msg.Body),
	)
	return ErrNoDestination
}
