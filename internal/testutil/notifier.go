package testutil

import (
	"context"
	"sync"

	"github.com/fincoach/billing/internal/notify"
)

// RecordingNotifier captures notifications for assertions in tests
type RecordingNotifier struct {
	mu         sync.Mutex
	delivered  []notify.Notification
	dismissals []string
}

// NewRecordingNotifier creates a new RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (r *RecordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, n)
}

func (r *RecordingNotifier) Dismiss(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissals = append(r.dismissals, id)
}

// Delivered returns all captured notifications in delivery order
func (r *RecordingNotifier) Delivered() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.delivered))
	copy(out, r.delivered)
	return out
}

// Last returns the most recent notification, or a zero value when none
func (r *RecordingNotifier) Last() (notify.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.delivered) == 0 {
		return notify.Notification{}, false
	}
	return r.delivered[len(r.delivered)-1], true
}

// Dismissed returns the ids of dismissed notifications
func (r *RecordingNotifier) Dismissed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.dismissals))
	copy(out, r.dismissals)
	return out
}

// Reset clears captured notifications and dismissals
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = nil
	r.dismissals = nil
}
