package domain

import (
	"fmt"
	"math"
)

// FloodArea is an Environment Agency warning or alert area. Distance and
// AffectsPlaceDirectly are derived per search by MeasureArea.
type FloodArea struct {
	Notation             string   `json:"notation"`
	Label                string   `json:"label"`
	Description          string   `json:"description,omitempty"`
	PolygonURL           string   `json:"polygon_url,omitempty"`
	Distance             *float64 `json:"distance_miles"`
	AffectsPlaceDirectly bool     `json:"affects_place_directly"`
}

// HasDistance reports whether a distance was measured.
func (a FloodArea) HasDistance() bool { return a.Distance != nil }

// Miles returns the measured distance, or +Inf when unknown.
func (a FloodArea) Miles() float64 {
	if a.Distance == nil {
		return math.Inf(1)
	}
	return *a.Distance
}

// Summary renders the label with a human readable proximity, as shown on the
// selection page, e.g. "River Wey at Godalming - 1.4 miles away".
func (a FloodArea) Summary(placeName string, cutoffMiles float64) string {
	switch {
	case a.AffectsPlaceDirectly:
		return fmt.Sprintf("%s - directly affects %s", a.Label, placeName)
	case a.HasDistance():
		miles := math.Round(*a.Distance*10) / 10
		if miles == 1 {
			return a.Label + " - 1 mile away"
		}
		return fmt.Sprintf("%s - %.1f miles away", a.Label, miles)
	case cutoffMiles > 0:
		return fmt.Sprintf("%s - less than %.1f miles away", a.Label, cutoffMiles)
	default:
		return a.Label + " - distance unknown"
	}
}

func milesPtr(v float64) *float64 { return &v }
