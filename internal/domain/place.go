package domain

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-area-service/internal/geo"
)

// PlaceKind distinguishes postcodes, which are point-like, from named places,
// which cover an extended area.
type PlaceKind string

const (
	KindPostcode PlaceKind = "postcode"
	KindPlace    PlaceKind = "place"
)

// MaxAlternatives caps the number of non-top results offered for selection.
const MaxAlternatives = 10

// GazetteerEntry is one result from the geocoding provider, still on the
// national grid.
type GazetteerEntry struct {
	ID             string
	Name           string
	Type           string
	LocalType      string
	Easting        float64
	Northing       float64
	PopulatedPlace string
	District       string
	Region         string
}

// Accepted reports whether the entry is a populated place or a postcode.
func (e GazetteerEntry) Accepted() bool {
	return e.Type == "populatedPlace" || e.LocalType == "Postcode"
}

// Place is a resolved location a user can pick.
type Place struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Locale   string    `json:"locale,omitempty"`
	Kind     PlaceKind `json:"kind"`
	Location geo.Point `json:"location"`
}

// IsPostcode reports whether the place was resolved from a postcode.
func (p Place) IsPostcode() bool { return p.Kind == KindPostcode }

// PlaceFromEntry converts a gazetteer entry to a Place. Missing grid
// coordinates are transformed as zero rather than rejected.
func PlaceFromEntry(e GazetteerEntry) Place {
	kind := KindPlace
	if e.LocalType == "Postcode" {
		kind = KindPostcode
	}

	var locale []string
	for _, part := range []string{e.PopulatedPlace, e.District, e.Region} {
		if part != "" {
			locale = append(locale, part)
		}
	}

	return Place{
		ID:       e.ID,
		Name:     e.Name,
		Locale:   strings.Join(locale, ", "),
		Kind:     kind,
		Location: geo.ToGeographic(e.Easting, e.Northing),
	}
}

// PlaceSearch is the outcome of a place query: the best match, a bounded list
// of alternatives, and every accepted place keyed by ID for later selection.
type PlaceSearch struct {
	Query        string           `json:"query"`
	Best         Place            `json:"best"`
	Alternatives []Place          `json:"alternatives"`
	All          map[string]Place `json:"-"`
}

// BuildPlaceSearch keeps the accepted entries in provider order. It returns
// ErrNotFound when none are accepted.
func BuildPlaceSearch(query string, entries []GazetteerEntry) (PlaceSearch, error) {
	places := make([]Place, 0, len(entries))
	for _, e := range entries {
		if !e.Accepted() {
			continue
		}
		places = append(places, PlaceFromEntry(e))
	}
	if len(places) == 0 {
		return PlaceSearch{}, fmt.Errorf("no places match %q: %w", query, ErrNotFound)
	}

	all := make(map[string]Place, len(places))
	for _, p := range places {
		all[p.ID] = p
	}

	alternatives := places[1:]
	if len(alternatives) > MaxAlternatives {
		alternatives = alternatives[:MaxAlternatives]
	}

	return PlaceSearch{
		Query:        query,
		Best:         places[0],
		Alternatives: append([]Place(nil), alternatives...),
		All:          all,
	}, nil
}
