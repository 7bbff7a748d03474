package notify

import (
	"context"

	"github.com/fincoach/billing/internal/types"
)

// Notification is a user-facing billing message. ID is stable per kind so
// repeated emissions of the same condition collapse instead of stacking.
type Notification struct {
	ID       string                     `json:"id"`
	Kind     types.NotificationKind     `json:"kind"`
	Severity types.NotificationSeverity `json:"severity"`
	Title    string                     `json:"title"`
	Message  string                     `json:"message"`
}

// Notifier delivers notifications to whatever user-facing channel is wired in
type Notifier interface {
	Notify(ctx context.Context, n Notification)

	// Dismiss retracts a previously delivered notification by id, when the
	// channel supports it
	Dismiss(ctx context.Context, id string)
}

// New builds a notification with the kind as its de-duplication id
func New(kind types.NotificationKind, severity types.NotificationSeverity, title, message string) Notification {
	return Notification{
		ID:       string(kind),
		Kind:     kind,
		Severity: severity,
		Title:    title,
		Message:  message,
	}
}
