package geo

import geojson "github.com/paulmach/go.geojson"

// FromGeoJSON normalizes a strictly decoded GeoJSON geometry.
func FromGeoJSON(g *geojson.Geometry) Geometry {
	var out Geometry
	appendGeoJSON(&out, g)
	return out
}

// FromFeatureCollection merges the geometries of every feature.
func FromFeatureCollection(fc *geojson.FeatureCollection) Geometry {
	var out Geometry
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		appendGeoJSON(&out, f.Geometry)
	}
	return out
}

func appendGeoJSON(out *Geometry, g *geojson.Geometry) {
	if g == nil {
		return
	}
	switch g.Type {
	case geojson.GeometryPoint:
		if len(g.Point) >= 2 {
			out.add(KindLine, []Point{position(g.Point)})
		}
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			if len(p) >= 2 {
				out.add(KindLine, []Point{position(p)})
			}
		}
	case geojson.GeometryLineString:
		out.add(KindLine, positions(g.LineString))
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			out.add(KindLine, positions(line))
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			out.add(KindRing, positions(ring))
		}
	case geojson.GeometryMultiPolygon:
		for _, polygon := range g.MultiPolygon {
			for _, ring := range polygon {
				out.add(KindRing, positions(ring))
			}
		}
	case geojson.GeometryCollection:
		for _, child := range g.Geometries {
			appendGeoJSON(out, child)
		}
	}
}

func position(c []float64) Point {
	return Point{Lon: c[0], Lat: c[1]}
}

func positions(coords [][]float64) []Point {
	pts := make([]Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, position(c))
	}
	return pts
}
