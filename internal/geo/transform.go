package geo

import "math"

// British National Grid (EPSG:27700) on the Airy 1830 ellipsoid.
const (
	airyA = 6377563.396
	airyB = 6356256.909

	gridScale     = 0.9996012717
	gridOriginLat = 49.0 * math.Pi / 180
	gridOriginLon = -2.0 * math.Pi / 180
	gridFalseE    = 400000.0
	gridFalseN    = -100000.0

	wgs84A = 6378137.0
	wgs84B = 6356752.314245
)

// Helmert parameters OSGB36 -> WGS84 (metres, arc-seconds, ppm).
const (
	helmertTX = 446.448
	helmertTY = -125.157
	helmertTZ = 542.06
	helmertRX = 0.15
	helmertRY = 0.247
	helmertRZ = 0.842
	helmertS  = -20.489
)

// ToGeographic converts a national grid easting/northing (metres) to a WGS84
// longitude/latitude. Callers pass 0 for missing coordinates; the result is
// then the grid origin off the Isles of Scilly, never an error.
func ToGeographic(easting, northing float64) Point {
	lat, lon := gridToOSGB36(easting, northing)
	x, y, z := toCartesian(lat, lon, airyA, airyB)
	x, y, z = helmert(x, y, z)
	lat, lon = fromCartesian(x, y, z, wgs84A, wgs84B)
	return Point{Lon: lon * 180 / math.Pi, Lat: lat * 180 / math.Pi}
}

// gridToOSGB36 is the inverse transverse Mercator projection. Returns radians
// on the Airy ellipsoid.
func gridToOSGB36(easting, northing float64) (float64, float64) {
	e2 := 1 - (airyB*airyB)/(airyA*airyA)
	n := (airyA - airyB) / (airyA + airyB)

	lat := gridOriginLat
	m := 0.0
	for i := 0; i < 100; i++ {
		lat = (northing-gridFalseN-m)/(airyA*gridScale) + lat
		m = meridionalArc(lat, n)
		if math.Abs(northing-gridFalseN-m) < 0.00001 {
			break
		}
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	nu := airyA * gridScale / math.Sqrt(1-e2*sinLat*sinLat)
	rho := airyA * gridScale * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2
	secLat := 1 / cosLat
	nu3 := nu * nu * nu
	nu5 := nu3 * nu * nu
	nu7 := nu5 * nu * nu

	vii := tanLat / (2 * rho * nu)
	viii := tanLat / (24 * rho * nu3) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanLat / (720 * rho * nu5) * (61 + 90*tan2 + 45*tan4)
	x := secLat / nu
	xi := secLat / (6 * nu3) * (nu/rho + 2*tan2)
	xii := secLat / (120 * nu5) * (5 + 28*tan2 + 24*tan4)
	xiia := secLat / (5040 * nu7) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	de := easting - gridFalseE
	de2 := de * de
	de3 := de2 * de
	de4 := de3 * de
	de5 := de4 * de
	de6 := de5 * de
	de7 := de6 * de

	outLat := lat - vii*de2 + viii*de4 - ix*de6
	outLon := gridOriginLon + x*de - xi*de3 + xii*de5 - xiia*de7
	return outLat, outLon
}

func meridionalArc(lat, n float64) float64 {
	n2 := n * n
	n3 := n2 * n
	dLat := lat - gridOriginLat
	sLat := lat + gridOriginLat

	ma := (1 + n + 5.0/4*n2 + 5.0/4*n3) * dLat
	mb := (3*n + 3*n2 + 21.0/8*n3) * math.Sin(dLat) * math.Cos(sLat)
	mc := (15.0/8*n2 + 15.0/8*n3) * math.Sin(2*dLat) * math.Cos(2*sLat)
	md := 35.0 / 24 * n3 * math.Sin(3*dLat) * math.Cos(3*sLat)
	return airyB * gridScale * (ma - mb + mc - md)
}

func toCartesian(lat, lon, a, b float64) (float64, float64, float64) {
	e2 := 1 - (b*b)/(a*a)
	sinLat := math.Sin(lat)
	nu := a / math.Sqrt(1-e2*sinLat*sinLat)
	return nu * math.Cos(lat) * math.Cos(lon),
		nu * math.Cos(lat) * math.Sin(lon),
		(1 - e2) * nu * sinLat
}

func helmert(x, y, z float64) (float64, float64, float64) {
	const arcsec = math.Pi / (180 * 3600)
	rx := helmertRX * arcsec
	ry := helmertRY * arcsec
	rz := helmertRZ * arcsec
	s := 1 + helmertS/1e6

	return helmertTX + x*s - y*rz + z*ry,
		helmertTY + x*rz + y*s - z*rx,
		helmertTZ - x*ry + y*rx + z*s
}

func fromCartesian(x, y, z, a, b float64) (float64, float64) {
	e2 := 1 - (b*b)/(a*a)
	p := math.Sqrt(x*x + y*y)

	lat := math.Atan2(z, p*(1-e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		nu := a / math.Sqrt(1-e2*sinLat*sinLat)
		next := math.Atan2(z+e2*nu*sinLat, p)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
	}
	return lat, math.Atan2(y, x)
}
