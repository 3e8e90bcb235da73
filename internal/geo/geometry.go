// Package geo holds the geometry behind flood-area resolution: the national
// grid transform, normalization of loosely shaped polygon payloads, and the
// containment and distance tests run against them.
package geo

import (
	"encoding/json"
	"strings"
)

// Point is a WGS84 longitude/latitude pair in degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Kind tags how a sequence takes part in proximity tests.
type Kind int

const (
	// KindLine is an open sequence used only for distance.
	KindLine Kind = iota
	// KindRing is implicitly closed and used for containment and distance.
	KindRing
)

func (k Kind) String() string {
	if k == KindRing {
		return "ring"
	}
	return "line"
}

// Sequence is an ordered run of points. A ring always has at least three
// distinct points.
type Sequence struct {
	Kind   Kind
	Points []Point
}

// Geometry is the normalized form of a flood-area polygon payload.
type Geometry struct {
	Sequences []Sequence
}

// Empty reports whether the geometry holds no sequences at all.
func (g Geometry) Empty() bool { return len(g.Sequences) == 0 }

// Merge appends the sequences of other to g.
func (g *Geometry) Merge(other Geometry) {
	g.Sequences = append(g.Sequences, other.Sequences...)
}

func (g *Geometry) add(kind Kind, pts []Point) {
	if len(pts) == 0 {
		return
	}
	if kind == KindRing && distinctPoints(pts) < 3 {
		kind = KindLine
	}
	g.Sequences = append(g.Sequences, Sequence{Kind: kind, Points: pts})
}

func distinctPoints(pts []Point) int {
	seen := make(map[Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
		if len(seen) >= 3 {
			break
		}
	}
	return len(seen)
}

// NodeKind discriminates the variants a raw coordinate node can decode into.
type NodeKind int

const (
	NodeMalformed NodeKind = iota
	NodePosition
	NodeList
)

// Node is one element of a raw GeoJSON coordinates tree. It decodes any JSON
// value without error: numeric pairs (or triples carrying an altitude) become
// positions, arrays become lists, everything else is malformed.
type Node struct {
	Kind     NodeKind
	Position Point
	Children []Node
}

// Pos builds a position node.
func Pos(lon, lat float64) Node {
	return Node{Kind: NodePosition, Position: Point{Lon: lon, Lat: lat}}
}

// List builds a list node.
func List(children ...Node) Node {
	return Node{Kind: NodeList, Children: children}
}

// UnmarshalJSON never fails; undecodable input yields a malformed node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*n = Node{Kind: NodeMalformed}
		return nil
	}
	if p, ok := decodePosition(items); ok {
		*n = Node{Kind: NodePosition, Position: p}
		return nil
	}
	children := make([]Node, len(items))
	for i, item := range items {
		_ = children[i].UnmarshalJSON(item)
	}
	*n = Node{Kind: NodeList, Children: children}
	return nil
}

func decodePosition(items []json.RawMessage) (Point, bool) {
	if len(items) != 2 && len(items) != 3 {
		return Point{}, false
	}
	var lon, lat float64
	if json.Unmarshal(items[0], &lon) != nil || json.Unmarshal(items[1], &lat) != nil {
		return Point{}, false
	}
	if len(items) == 3 {
		var alt float64
		if json.Unmarshal(items[2], &alt) != nil {
			return Point{}, false
		}
	}
	return Point{Lon: lon, Lat: lat}, true
}

// RawGeometry is a geometry object as served upstream, before normalization.
type RawGeometry struct {
	Type        string `json:"type"`
	Coordinates Node   `json:"coordinates"`
}

// Normalize flattens a raw coordinates tree into sequences. Positions that
// sit side by side in one list form a sequence; nested lists are walked
// recursively, so a bare position among rings becomes a one-point sequence.
// Malformed nodes are dropped individually and never fail the geometry.
func Normalize(raw RawGeometry) Geometry {
	var g Geometry
	walk(&g, raw.Coordinates, kindForType(raw.Type))
	return g
}

func walk(g *Geometry, n Node, kind Kind) {
	switch n.Kind {
	case NodePosition:
		g.add(KindLine, []Point{n.Position})
	case NodeList:
		var pts []Point
		for _, child := range n.Children {
			switch child.Kind {
			case NodePosition:
				pts = append(pts, child.Position)
			case NodeList:
				walk(g, child, kind)
			case NodeMalformed:
			}
		}
		if len(pts) == 1 {
			kind = KindLine
		}
		g.add(kind, pts)
	case NodeMalformed:
	}
}

// kindForType maps a GeoJSON geometry type onto the sequence kind its
// coordinate runs produce. Unknown or missing types are assumed to be polygons
// since the flood-area endpoint only serves those.
func kindForType(t string) Kind {
	switch strings.ToLower(t) {
	case "linestring", "multilinestring", "point", "multipoint":
		return KindLine
	default:
		return KindRing
	}
}
