package domain

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-area-service/internal/geo"
)

// Policy bundles the per-deployment tuning of area resolution.
type Policy struct {
	Name   string
	Scheme Scheme
	Method geo.Method

	// Areas closer than the tolerance count as directly affecting the place.
	PostcodeToleranceMiles float64
	PlaceToleranceMiles    float64

	// Radius passed to the flood area query.
	PostcodeRadiusKm float64
	PlaceRadiusKm    float64

	// Areas at or beyond the cutoff are dropped. Zero disables the cutoff.
	CutoffMiles float64
}

var (
	// LocationPolicy pairs the short notation scheme with a tight postcode
	// tolerance, nearest-vertex distances and a two mile cutoff.
	LocationPolicy = Policy{
		Name:                   "location",
		Scheme:                 ShortScheme,
		Method:                 geo.MethodVertex,
		PostcodeToleranceMiles: 0.05,
		PlaceToleranceMiles:    3,
		PostcodeRadiusKm:       1,
		PlaceRadiusKm:          6,
		CutoffMiles:            2,
	}

	// PlacePolicy pairs the long notation scheme with segment distances and
	// no cutoff.
	PlacePolicy = Policy{
		Name:                   "place",
		Scheme:                 LongScheme,
		Method:                 geo.MethodSegment,
		PostcodeToleranceMiles: 0.15,
		PlaceToleranceMiles:    3,
		PostcodeRadiusKm:       0,
		PlaceRadiusKm:          6,
		CutoffMiles:            0,
	}
)

// PolicyByName returns one of the built-in profiles.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LocationPolicy.Name:
		return LocationPolicy, nil
	case PlacePolicy.Name:
		return PlacePolicy, nil
	default:
		return Policy{}, fmt.Errorf("unknown flood profile %q", name)
	}
}

// Tolerance returns the collapse tolerance in miles for a kind of place.
func (p Policy) Tolerance(kind PlaceKind) float64 {
	if kind == KindPostcode {
		return p.PostcodeToleranceMiles
	}
	return p.PlaceToleranceMiles
}

// SearchRadiusKm returns the query radius for a kind of place.
func (p Policy) SearchRadiusKm(kind PlaceKind) float64 {
	if kind == KindPostcode {
		return p.PostcodeRadiusKm
	}
	return p.PlaceRadiusKm
}

// SearchParams resolves the query radius and cutoff for a place. A positive
// radiusMiles from the caller overrides both.
func (p Policy) SearchParams(kind PlaceKind, radiusMiles float64) (radiusKm, cutoffMiles float64) {
	if radiusMiles > 0 {
		return geo.MilesToKm(radiusMiles), radiusMiles
	}
	return p.SearchRadiusKm(kind), p.CutoffMiles
}
