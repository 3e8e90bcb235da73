package domain

import (
	"sort"

	"github.com/couchcryptid/flood-area-service/internal/geo"
)

// AreaFailure records an area dropped because its geometry could not be
// fetched.
type AreaFailure struct {
	Notation string `json:"notation"`
	Reason   string `json:"reason"`
}

// Classification is the result of resolving candidate areas around a place.
type Classification struct {
	Warnings []FloodArea   `json:"warning_areas"`
	Alerts   []FloodArea   `json:"alert_areas"`
	Failed   []AreaFailure `json:"failed,omitempty"`
}

// Partial reports whether any candidate was dropped by a fetch failure.
func (c Classification) Partial() bool { return len(c.Failed) > 0 }

// Areas returns warnings followed by alerts.
func (c Classification) Areas() []FloodArea {
	out := make([]FloodArea, 0, len(c.Warnings)+len(c.Alerts))
	out = append(out, c.Warnings...)
	return append(out, c.Alerts...)
}

// Lookup finds an area by notation in either partition.
func (c Classification) Lookup(notation string) (FloodArea, bool) {
	for _, a := range c.Areas() {
		if a.Notation == notation {
			return a, true
		}
	}
	return FloodArea{}, false
}

// MeasureArea returns a copy of area with its proximity to origin attached.
// Geometry without usable evidence leaves the distance unknown.
func MeasureArea(area FloodArea, g geo.Geometry, origin geo.Point, toleranceMiles float64, m geo.Method) FloodArea {
	p := geo.Resolve(origin, g, toleranceMiles, m)
	if !p.HasDistance {
		area.Distance = nil
		area.AffectsPlaceDirectly = false
		return area
	}
	area.Distance = milesPtr(p.Miles)
	area.AffectsPlaceDirectly = p.Inside || p.Miles == 0
	return area
}

// Partition filters areas by cutoff and splits them by category. Areas with an
// unknown distance always pass the cutoff; a cutoff of zero or less keeps
// everything. Each partition is ordered nearest first with unknown distances
// last and ties broken by notation.
func Partition(areas []FloodArea, cutoffMiles float64, s Scheme) Classification {
	var c Classification
	for _, a := range areas {
		if a.HasDistance() && cutoffMiles > 0 && *a.Distance >= cutoffMiles {
			continue
		}
		switch s.Categorize(a.Notation) {
		case CategoryWarning:
			c.Warnings = append(c.Warnings, a)
		case CategoryAlert:
			c.Alerts = append(c.Alerts, a)
		case CategoryNone:
		}
	}
	sortByDistance(c.Warnings)
	sortByDistance(c.Alerts)
	return c
}

func sortByDistance(areas []FloodArea) {
	sort.SliceStable(areas, func(i, j int) bool {
		di, dj := areas[i].Miles(), areas[j].Miles()
		if di != dj {
			return di < dj
		}
		return areas[i].Notation < areas[j].Notation
	})
}
