package service

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for the external delivery service; it logs
// what would have been sent.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, recipient, kind string, payload map[string]any) error {
	slog.Info("Notification queued", "recipient", recipient, "kind", kind)
	return nil
}
