package domain

import (
	"math"
	"testing"

	"github.com/couchcryptid/flood-area-service/internal/geo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() geo.Geometry {
	return geo.Normalize(geo.RawGeometry{
		Type:        "Polygon",
		Coordinates: geo.List(geo.List(geo.Pos(-1, -1), geo.Pos(1, -1), geo.Pos(1, 1), geo.Pos(-1, 1), geo.Pos(-1, -1))),
	})
}

func area(notation string, miles ...float64) FloodArea {
	a := FloodArea{Notation: notation, Label: "Area " + notation}
	if len(miles) > 0 {
		a.Distance = milesPtr(miles[0])
	}
	return a
}

func notations(areas []FloodArea) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.Notation
	}
	return out
}

func TestMeasureArea_Inside(t *testing.T) {
	got := MeasureArea(area("061FWF23"), square(), geo.Point{}, 0, geo.MethodSegment)

	require.True(t, got.HasDistance())
	assert.Zero(t, *got.Distance)
	assert.True(t, got.AffectsPlaceDirectly)
}

func TestMeasureArea_Outside(t *testing.T) {
	in := area("061FWF23")
	got := MeasureArea(in, square(), geo.Point{Lon: 10, Lat: 10}, 0, geo.MethodVertex)

	require.True(t, got.HasDistance())
	assert.InDelta(t, geo.DistanceMiles(geo.Point{Lon: 10, Lat: 10}, geo.Point{Lon: 1, Lat: 1}), *got.Distance, 1e-6)
	assert.False(t, got.AffectsPlaceDirectly)
	assert.Nil(t, in.Distance, "input must not be mutated")
}

func TestMeasureArea_WithinTolerance(t *testing.T) {
	got := MeasureArea(area("061FWF23"), square(), geo.Point{Lon: 0, Lat: 1.01}, 3, geo.MethodSegment)

	assert.True(t, got.AffectsPlaceDirectly)
	assert.Zero(t, *got.Distance)
}

func TestMeasureArea_NoEvidence(t *testing.T) {
	stale := area("061FWF23", 1.5)
	stale.AffectsPlaceDirectly = true

	got := MeasureArea(stale, geo.Geometry{}, geo.Point{}, 3, geo.MethodSegment)

	assert.False(t, got.HasDistance())
	assert.False(t, got.AffectsPlaceDirectly)
	assert.True(t, math.IsInf(got.Miles(), 1))
}

func TestPartition_ShortScheme(t *testing.T) {
	areas := []FloodArea{
		area("064WAB23", 0.4),
		area("064FWB23", 1.2),
		area("064FWB24", 0),
		area("064XXX01", 0),
		area("064WAB99"),
	}

	c := Partition(areas, 2, ShortScheme)

	assert.Equal(t, []string{"064FWB24", "064FWB23"}, notations(c.Warnings))
	assert.Equal(t, []string{"064WAB23", "064WAB99"}, notations(c.Alerts))
	assert.False(t, c.Partial())
}

func TestPartition_LongScheme(t *testing.T) {
	areas := []FloodArea{
		area("122FWF723", 1),
		area("122WAF918", 1),
		area("064FWB23", 1),
	}

	c := Partition(areas, 0, LongScheme)

	assert.Equal(t, []string{"122FWF723"}, notations(c.Warnings))
	assert.Equal(t, []string{"122WAF918"}, notations(c.Alerts))
}

func TestPartition_Cutoff(t *testing.T) {
	areas := []FloodArea{
		area("FW1", 1.99),
		area("FW2", 2),
		area("FW3", 5),
		area("FW4"),
	}

	assert.Equal(t, []string{"FW1", "FW4"}, notations(Partition(areas, 2, ShortScheme).Warnings))
	assert.Equal(t, []string{"FW1", "FW2", "FW3", "FW4"}, notations(Partition(areas, 0, ShortScheme).Warnings))
}

func TestPartition_UnknownDistanceNeverCut(t *testing.T) {
	areas := []FloodArea{area("FW1"), area("WA1")}
	for _, cutoff := range []float64{-1, 0, 0.001, 2, 1e9} {
		c := Partition(areas, cutoff, ShortScheme)
		assert.Len(t, c.Warnings, 1, "cutoff %v", cutoff)
		assert.Len(t, c.Alerts, 1, "cutoff %v", cutoff)
	}
}

func TestPartition_NoAreaInBothPartitions(t *testing.T) {
	// "FWA" contains both short markers.
	areas := []FloodArea{area("011FWA01", 0), area("011WAFW2", 0), area("FWFWAF", 0)}

	for _, s := range []Scheme{ShortScheme, LongScheme} {
		c := Partition(areas, 0, s)
		seen := map[string]bool{}
		for _, a := range c.Warnings {
			seen[a.Notation] = true
		}
		for _, a := range c.Alerts {
			assert.False(t, seen[a.Notation], "%s in both partitions under %s", a.Notation, s.Name)
		}
	}
}

func TestPartition_TiesOrderedByNotation(t *testing.T) {
	c := Partition([]FloodArea{area("FW3", 1), area("FW1", 1), area("FW2"), area("FW0")}, 0, ShortScheme)

	if diff := cmp.Diff([]string{"FW1", "FW3", "FW0", "FW2"}, notations(c.Warnings)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestClassification_Lookup(t *testing.T) {
	c := Classification{Warnings: []FloodArea{area("FW1", 0)}, Alerts: []FloodArea{area("WA1", 1)}}

	got, ok := c.Lookup("WA1")
	require.True(t, ok)
	assert.Equal(t, "WA1", got.Notation)

	_, ok = c.Lookup("WA2")
	assert.False(t, ok)
	assert.Len(t, c.Areas(), 2)
}

func TestFloodArea_Summary(t *testing.T) {
	direct := area("FW1", 0)
	direct.AffectsPlaceDirectly = true

	tests := []struct {
		name   string
		area   FloodArea
		cutoff float64
		want   string
	}{
		{"direct", direct, 2, "Area FW1 - directly affects Godalming"},
		{"one mile", area("FW2", 0.96), 2, "Area FW2 - 1 mile away"},
		{"miles", area("FW3", 1.44), 2, "Area FW3 - 1.4 miles away"},
		{"unknown with cutoff", area("FW4"), 2, "Area FW4 - less than 2.0 miles away"},
		{"unknown without cutoff", area("FW5"), 0, "Area FW5 - distance unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.area.Summary("Godalming", tt.cutoff))
		})
	}
}

func TestScheme_Categorize(t *testing.T) {
	assert.Equal(t, CategoryWarning, ShortScheme.Categorize("064FWB23"))
	assert.Equal(t, CategoryAlert, ShortScheme.Categorize("064WAB23"))
	assert.Equal(t, CategoryNone, ShortScheme.Categorize("064XXB23"))
	assert.Equal(t, CategoryNone, LongScheme.Categorize("064FWB23"))
	assert.Equal(t, "alert", CategoryAlert.String())
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("LONG")
	require.NoError(t, err)
	assert.Equal(t, LongScheme, s)

	_, err = ParseScheme("medium")
	assert.Error(t, err)
}

func TestPolicy(t *testing.T) {
	p, err := PolicyByName("location")
	require.NoError(t, err)
	assert.Equal(t, 0.05, p.Tolerance(KindPostcode))
	assert.Equal(t, 3.0, p.Tolerance(KindPlace))
	assert.Equal(t, 1.0, p.SearchRadiusKm(KindPostcode))
	assert.Equal(t, 6.0, p.SearchRadiusKm(KindPlace))

	km, cutoff := p.SearchParams(KindPostcode, 0)
	assert.Equal(t, 1.0, km)
	assert.Equal(t, 2.0, cutoff)

	km, cutoff = p.SearchParams(KindPostcode, 5)
	assert.InDelta(t, 8.04672, km, 1e-9)
	assert.Equal(t, 5.0, cutoff)

	p, err = PolicyByName("Place")
	require.NoError(t, err)
	assert.Equal(t, LongScheme, p.Scheme)
	assert.Equal(t, geo.MethodSegment, p.Method)
	assert.Zero(t, p.CutoffMiles)

	_, err = PolicyByName("street")
	assert.Error(t, err)
}
