// Package session holds the per-user journey state: the places offered by the
// last search, the selected place with its classified areas, and the
// subscription set.
package session

import (
	"context"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/google/uuid"
)

// Session is the state carried between the steps of one sign-up journey.
type Session struct {
	ID            string                  `json:"id"`
	LastSearch    *domain.PlaceSearch     `json:"last_search,omitempty"`
	Places        map[string]domain.Place `json:"places,omitempty"`
	Selection     *Selection              `json:"selection,omitempty"`
	Subscriptions domain.SubscriptionSet  `json:"subscriptions"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// Selection is the place the user picked and the areas found around it.
type Selection struct {
	Place          domain.Place          `json:"place"`
	RadiusMiles    float64               `json:"radius_miles,omitempty"`
	CutoffMiles    float64               `json:"cutoff_miles,omitempty"`
	Classification domain.Classification `json:"classification"`
}

// New creates an empty session with a random ID.
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Place looks up a place offered by the last search.
func (s *Session) Place(id string) (domain.Place, bool) {
	p, ok := s.Places[id]
	return p, ok
}

// Store persists sessions between requests.
type Store interface {
	// Create stores and returns a new empty session.
	Create(ctx context.Context) (*Session, error)

	// Get loads a session. It returns domain.ErrNotFound for unknown or
	// expired IDs.
	Get(ctx context.Context, id string) (*Session, error)

	// Save writes the session back and refreshes its expiry.
	Save(ctx context.Context, s *Session) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
