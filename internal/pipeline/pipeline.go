// Package pipeline runs the sign-up journey: resolving a place, classifying
// the flood areas around it and applying subscription choices.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/observability"
	"github.com/couchcryptid/flood-area-service/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName          = "github.com/couchcryptid/flood-area-service/internal/pipeline"
	defaultFetchTimeout = 8 * time.Second
)

// EventPublisher announces subscription changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.SubscriptionEvent) error
}

// Config tunes area classification.
type Config struct {
	Policy       domain.Policy
	FetchTimeout time.Duration
	Concurrency  int
}

// Pipeline orchestrates the journey steps over the injected adapters.
type Pipeline struct {
	geocoder domain.Geocoder
	areas    domain.FloodAreaSource
	store    session.Store
	events   EventPublisher
	locks    session.Locks
	cfg      Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// New creates a Pipeline. Pass a nil publisher to disable subscription events.
func New(geocoder domain.Geocoder, areas domain.FloodAreaSource, store session.Store, events EventPublisher, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if events != nil {
		metrics.EventsEnabled.Set(1)
	}
	return &Pipeline{
		geocoder: geocoder,
		areas:    areas,
		store:    store,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// Policy returns the deployment profile in use.
func (p *Pipeline) Policy() domain.Policy { return p.cfg.Policy }

// CheckReadiness reports whether the session store is reachable.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("session store unavailable: %w", err)
	}
	return nil
}

// CreateSession starts a new journey.
func (p *Pipeline) CreateSession(ctx context.Context) (*session.Session, error) {
	return p.store.Create(ctx)
}

// Session loads a journey without modifying it.
func (p *Pipeline) Session(ctx context.Context, id string) (*session.Session, error) {
	return p.store.Get(ctx, id)
}

// WithSession loads the session, runs fn and saves the result. Calls for the
// same session are serialized. Nothing is saved when fn fails.
func (p *Pipeline) WithSession(ctx context.Context, id string, fn func(*session.Session) error) error {
	unlock := p.locks.Lock(id)
	defer unlock()

	sess, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	return p.store.Save(ctx, sess)
}

// ResolvePlace geocodes query and offers the matches for selection. The
// previous search results in the session are replaced.
func (p *Pipeline) ResolvePlace(ctx context.Context, sess *session.Session, query string) (domain.PlaceSearch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.PlaceSearch{}, fmt.Errorf("empty place query: %w", domain.ErrInvalidInput)
	}

	ctx, span := p.tracer.Start(ctx, "resolve_place", trace.WithAttributes(
		attribute.String("session.id", sess.ID),
	))
	defer span.End()

	entries, err := p.geocoder.Find(ctx, query)
	if err != nil {
		recordSpanError(span, err)
		return domain.PlaceSearch{}, err
	}

	search, err := domain.BuildPlaceSearch(query, entries)
	if err != nil {
		recordSpanError(span, err)
		return domain.PlaceSearch{}, err
	}
	span.SetAttributes(attribute.Int("places.count", len(search.All)))

	sess.Places = search.All
	sess.LastSearch = &search
	p.logger.Debug("place resolved",
		"session_id", sess.ID,
		"best", search.Best.ID,
		"alternatives", len(search.Alternatives),
	)
	return search, nil
}

// SelectPlace picks one of the places offered by the last search and
// classifies the flood areas around it. A positive radiusMiles overrides the
// profile's search radius and cutoff.
func (p *Pipeline) SelectPlace(ctx context.Context, sess *session.Session, placeID string, radiusMiles float64) (session.Selection, error) {
	if radiusMiles < 0 {
		return session.Selection{}, fmt.Errorf("negative radius %v: %w", radiusMiles, domain.ErrInvalidInput)
	}
	place, ok := sess.Place(placeID)
	if !ok {
		return session.Selection{}, fmt.Errorf("place %q not offered: %w", placeID, domain.ErrNotFound)
	}

	c, err := p.ClassifyAreas(ctx, place, radiusMiles)
	if err != nil {
		return session.Selection{}, err
	}

	_, cutoff := p.cfg.Policy.SearchParams(place.Kind, radiusMiles)
	sel := session.Selection{
		Place:          place,
		RadiusMiles:    radiusMiles,
		CutoffMiles:    cutoff,
		Classification: c,
	}
	sess.Selection = &sel
	return sel, nil
}

// Update is one submission against the subscription set.
type Update struct {
	Action domain.SubscriptionAction

	// Checked and Single carry the warning or alert page submission.
	Checked []string
	Single  domain.SingleArea

	// AreaID names the area to drop for ActionRemove.
	AreaID string
}

// UpdateSubscription applies u to the session's subscription set and returns
// the new set. Warning and alert submissions replace the choices for the
// areas currently offered. When the set changes an event is published; a
// publish failure is logged and does not fail the update.
func (p *Pipeline) UpdateSubscription(ctx context.Context, sess *session.Session, u Update) (domain.SubscriptionSet, error) {
	var current domain.Classification
	var placeID string
	if sess.Selection != nil {
		current = sess.Selection.Classification
		placeID = sess.Selection.Place.ID
	}

	before := sess.Subscriptions.Clone()
	switch u.Action {
	case domain.ActionWarning:
		sess.Subscriptions.ApplyWarningSelection(current.Warnings, u.Checked, u.Single)
	case domain.ActionAlert:
		sess.Subscriptions.ApplyAlertSelection(current.Alerts, u.Checked, u.Single)
	case domain.ActionRemove:
		if strings.TrimSpace(u.AreaID) == "" {
			return domain.SubscriptionSet{}, fmt.Errorf("missing area id: %w", domain.ErrInvalidInput)
		}
		sess.Subscriptions.Remove(u.AreaID)
	default:
		return domain.SubscriptionSet{}, fmt.Errorf("unknown subscription action %q: %w", u.Action, domain.ErrInvalidInput)
	}
	p.metrics.SubscriptionUpdates.WithLabelValues(string(u.Action)).Inc()

	event := domain.NewSubscriptionEvent(sess.ID, placeID, u.Action, before, sess.Subscriptions)
	if event.Changed() {
		p.publish(ctx, event)
	}
	return sess.Subscriptions.Clone(), nil
}

func (p *Pipeline) publish(ctx context.Context, event domain.SubscriptionEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		p.logger.Warn("subscription event publish failed",
			"error", err,
			"session_id", event.SessionID,
			"event_id", event.ID,
		)
		return
	}
	p.metrics.EventsPublished.WithLabelValues("success").Inc()
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
