package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s2"
)

// Method selects how the distance to a sequence is measured.
type Method int

const (
	// MethodSegment measures to the nearest point on any segment.
	MethodSegment Method = iota
	// MethodVertex measures to the nearest vertex only.
	MethodVertex
)

func (m Method) String() string {
	if m == MethodVertex {
		return "vertex"
	}
	return "segment"
}

// ParseMethod accepts "segment" or "vertex".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "segment":
		return MethodSegment, nil
	case "vertex":
		return MethodVertex, nil
	default:
		return MethodSegment, fmt.Errorf("unknown distance method %q", s)
	}
}

// Proximity is the outcome of testing a point against one geometry.
// HasDistance is false when the geometry offered no usable evidence; Miles is
// meaningless in that case.
type Proximity struct {
	Inside      bool
	Miles       float64
	HasDistance bool
}

// Resolve tests q against g. A point inside any ring, or closer to the
// geometry than toleranceMiles, is reported inside at distance zero.
func Resolve(q Point, g Geometry, toleranceMiles float64, m Method) Proximity {
	for _, seq := range g.Sequences {
		if seq.Kind == KindRing && containsPoint(seq.Points, q) {
			return Proximity{Inside: true, HasDistance: true}
		}
	}

	best, ok := minDistance(q, g, m)
	if !ok {
		return Proximity{}
	}
	if best < toleranceMiles {
		return Proximity{Inside: true, HasDistance: true}
	}
	return Proximity{Miles: best, HasDistance: true}
}

// containsPoint is planar ray casting over lon/lat, which is accurate enough
// at flood-area scale.
func containsPoint(ring []Point, q Point) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Lat > q.Lat) != (pj.Lat > q.Lat) &&
			q.Lon < (pj.Lon-pi.Lon)*(q.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lon {
			inside = !inside
		}
		j = i
	}
	return inside
}

// minDistance returns the smallest distance from q to any sequence with at
// least two points. Single-point sequences carry no evidence.
func minDistance(q Point, g Geometry, m Method) (float64, bool) {
	x := toS2(q)
	best := math.Inf(1)
	found := false

	for _, seq := range g.Sequences {
		if len(seq.Points) < 2 {
			continue
		}
		pts := make([]s2.Point, len(seq.Points))
		for i, p := range seq.Points {
			pts[i] = toS2(p)
		}

		var d float64
		if m == MethodVertex {
			d = nearestVertex(x, pts)
		} else {
			d = nearestSegment(x, pts, seq.Kind == KindRing)
		}
		if d < best {
			best = d
			found = true
		}
	}
	return best, found
}

func nearestVertex(x s2.Point, pts []s2.Point) float64 {
	best := math.Inf(1)
	for _, p := range pts {
		if d := x.Distance(p).Radians() * EarthRadiusMiles; d < best {
			best = d
		}
	}
	return best
}

func nearestSegment(x s2.Point, pts []s2.Point, closed bool) float64 {
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := segmentDistanceMiles(x, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	if closed {
		if d := segmentDistanceMiles(x, pts[len(pts)-1], pts[0]); d < best {
			best = d
		}
	}
	return best
}
