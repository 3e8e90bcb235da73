package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// measured is the outcome of one area's geometry fetch. Exactly one of area
// or failure is meaningful.
type measured struct {
	area    domain.FloodArea
	failure *domain.AreaFailure
}

// ClassifyAreas finds the flood areas around place, measures each against its
// boundary and partitions them into warning and alert areas. Boundaries are
// fetched concurrently. An area whose fetch times out is kept with an unknown
// distance; any other fetch failure drops it into Classification.Failed.
func (p *Pipeline) ClassifyAreas(ctx context.Context, place domain.Place, radiusMiles float64) (domain.Classification, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "classify_areas", trace.WithAttributes(
		attribute.String("place.id", place.ID),
		attribute.String("place.kind", string(place.Kind)),
	))
	defer span.End()

	policy := p.cfg.Policy
	radiusKm, cutoff := policy.SearchParams(place.Kind, radiusMiles)

	candidates, err := p.areas.AreasNear(ctx, place.Location, radiusKm)
	if err != nil {
		recordSpanError(span, err)
		return domain.Classification{}, err
	}

	tolerance := policy.Tolerance(place.Kind)
	results := make([]measured, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, area := range candidates {
		g.Go(func() error {
			results[i] = p.measure(ctx, area, place, tolerance)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		recordSpanError(span, err)
		return domain.Classification{}, err
	}

	areas := make([]domain.FloodArea, 0, len(results))
	var failed []domain.AreaFailure
	for _, r := range results {
		if r.failure != nil {
			failed = append(failed, *r.failure)
			continue
		}
		areas = append(areas, r.area)
	}

	c := domain.Partition(areas, cutoff, policy.Scheme)
	c.Failed = failed

	p.metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	p.metrics.AreasClassified.WithLabelValues("warning").Add(float64(len(c.Warnings)))
	p.metrics.AreasClassified.WithLabelValues("alert").Add(float64(len(c.Alerts)))
	if c.Partial() {
		p.metrics.PartialClassifications.Inc()
	}

	span.SetAttributes(
		attribute.Int("areas.candidates", len(candidates)),
		attribute.Int("areas.warnings", len(c.Warnings)),
		attribute.Int("areas.alerts", len(c.Alerts)),
		attribute.Int("areas.failed", len(c.Failed)),
	)
	p.logger.Debug("areas classified",
		"place_id", place.ID,
		"candidates", len(candidates),
		"warnings", len(c.Warnings),
		"alerts", len(c.Alerts),
		"failed", len(c.Failed),
	)
	return c, nil
}

// measure fetches one area's boundary under its own timeout and attaches the
// proximity to place.
func (p *Pipeline) measure(ctx context.Context, area domain.FloodArea, place domain.Place, tolerance float64) measured {
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	fetchCtx, span := p.tracer.Start(fetchCtx, "fetch_polygon", trace.WithAttributes(
		attribute.String("area.notation", area.Notation),
	))
	defer span.End()

	g, err := p.areas.FetchGeometry(fetchCtx, area.PolygonURL)
	switch {
	case err == nil:
		p.metrics.PolygonFetches.WithLabelValues("success").Inc()
		return measured{area: domain.MeasureArea(area, g, place.Location, tolerance, p.cfg.Policy.Method)}

	case errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		p.metrics.PolygonFetches.WithLabelValues("timeout").Inc()
		recordSpanError(span, err)
		p.logger.Warn("polygon fetch timed out, distance unknown",
			"notation", area.Notation,
			"timeout", p.cfg.FetchTimeout,
		)
		area.Distance = nil
		area.AffectsPlaceDirectly = false
		return measured{area: area}

	default:
		p.metrics.PolygonFetches.WithLabelValues("error").Inc()
		recordSpanError(span, err)
		p.logger.Warn("polygon fetch failed, dropping area",
			"notation", area.Notation,
			"error", err,
		)
		return measured{failure: &domain.AreaFailure{Notation: area.Notation, Reason: err.Error()}}
	}
}
