package notify

import (
	"context"

	"github.com/fincoach/billing/internal/logger"
)

// LogNotifier writes notifications to the structured log. It is the default
// sink when no push channel is configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(log *logger.Logger) Notifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(_ context.Context, notification Notification) {
	n.logger.Infow("billing notification",
		"id", notification.ID,
		"kind", notification.Kind,
		"severity", notification.Severity,
		"title", notification.Title,
		"message", notification.Message,
	)
}

func (n *LogNotifier) Dismiss(_ context.Context, id string) {
	n.logger.Debugw("billing notification dismissed", "id", id)
}
