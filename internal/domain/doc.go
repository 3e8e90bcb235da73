// Package domain models the places users search for and the Environment
// Agency flood areas that may affect them.
//
// # Data Sources
//
// Places come from the Ordnance Survey Names API
// (https://api.os.uk/search/names/v1/find). Each result carries a
// GAZETTEER_ENTRY whose GEOMETRY_X/GEOMETRY_Y are British National Grid
// eastings and northings; they are converted to WGS84 by geo.ToGeographic.
// Only populated places and postcodes are offered to users:
//
//	TYPE == "populatedPlace"  →  towns, villages, hamlets
//	LOCAL_TYPE == "Postcode"  →  full postcodes such as "SW1A 1AA"
//
// Flood areas come from the Environment Agency flood-monitoring API
// (https://environment.data.gov.uk/flood-monitoring/id/floodAreas). Each item
// has a notation, a label, a description and a polygon URL serving a GeoJSON
// FeatureCollection.
//
// # Area Notations
//
// The category of an area is encoded in its notation:
//
//	"122FWF723"  →  flood warning area  (long scheme marker "FWF")
//	"122WAF918"  →  flood alert area    (long scheme marker "WAF")
//	"064FWB23"   →  flood warning area  (short scheme marker "FW")
//	"064WAB23"   →  flood alert area    (short scheme marker "WA")
//
// A deployment uses exactly one Scheme. The warning marker is tested first,
// so a notation is never classified as both.
//
// # Distances
//
// Distances are statute miles. A nil FloodArea.Distance means the geometry
// offered no usable evidence; such areas are never removed by a cutoff.
package domain
