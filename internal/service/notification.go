package service

import (
	"context"
	"log"
	"time"
)

// TransitionEvent is the structured record emitted after every booking or
// payout state transition. A separate notification component consumes these
// to alert the other party; the core does not know how delivery happens.
type TransitionEvent struct {
	Name       string
	EntityKind string // "booking" or "payout"
	EntityID   string
	ActorID    string // empty for system-driven transitions
	Metadata   map[string]string
	OccurredAt time.Time
}

// Notifier consumes transition events.
type Notifier interface {
	Notify(ctx context.Context, event TransitionEvent)
}

// NotificationService is the default Notifier. It logs events; a real
// deployment would fan them out to push/SMS/email providers.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Notify records the transition event.
func (s *NotificationService) Notify(ctx context.Context, event TransitionEvent) {
	actor := event.ActorID
	if actor == "" {
		actor = "system"
	}

	log.Printf("[NOTIFY] event=%s %s=%s actor=%s",
		event.Name, event.EntityKind, event.EntityID, actor)
}

var _ Notifier = (*NotificationService)(nil)
