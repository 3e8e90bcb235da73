package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriptionAction names a subscription change.
type SubscriptionAction string

const (
	ActionWarning SubscriptionAction = "warning"
	ActionAlert   SubscriptionAction = "alert"
	ActionRemove  SubscriptionAction = "remove"
)

// ParseAction validates an action name.
func ParseAction(s string) (SubscriptionAction, error) {
	switch a := SubscriptionAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionWarning, ActionAlert, ActionRemove:
		return a, nil
	default:
		return "", fmt.Errorf("unknown subscription action %q: %w", s, ErrInvalidInput)
	}
}

// SubscriptionEvent is published after a subscription set changes.
type SubscriptionEvent struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"session_id"`
	Action     SubscriptionAction `json:"action"`
	PlaceID    string             `json:"place_id,omitempty"`
	Added      []string           `json:"added"`
	Removed    []string           `json:"removed"`
	AreaIDs    []string           `json:"area_ids"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewSubscriptionEvent describes the change from before to after.
func NewSubscriptionEvent(sessionID, placeID string, action SubscriptionAction, before, after SubscriptionSet) SubscriptionEvent {
	added, removed := after.Diff(before)
	if added == nil {
		added = []string{}
	}
	if removed == nil {
		removed = []string{}
	}
	return SubscriptionEvent{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Action:     action,
		PlaceID:    placeID,
		Added:      added,
		Removed:    removed,
		AreaIDs:    after.IDs(),
		OccurredAt: clock.Now().UTC(),
	}
}

// Changed reports whether the event carries any difference.
func (e SubscriptionEvent) Changed() bool {
	return len(e.Added) > 0 || len(e.Removed) > 0
}
