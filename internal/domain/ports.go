package domain

import (
	"context"

	"github.com/couchcryptid/flood-area-service/internal/geo"
)

// Geocoder resolves free text to gazetteer entries.
type Geocoder interface {
	// Find returns matching entries in provider relevance order.
	Find(ctx context.Context, query string) ([]GazetteerEntry, error)
}

// FloodAreaSource serves candidate flood areas and their boundaries.
type FloodAreaSource interface {
	// AreasNear lists areas within radiusKm of p. Derived fields are unset.
	AreasNear(ctx context.Context, p geo.Point, radiusKm float64) ([]FloodArea, error)

	// FetchGeometry downloads and normalizes the polygon behind polygonURL.
	FetchGeometry(ctx context.Context, polygonURL string) (geo.Geometry, error)
}
