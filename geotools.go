package percolate

import (
	"math"

	h3 "github.com/uber/h3-go/v4"
)

// edgeLengths holds the average edge length in meters for H3
// resolutions 0..15, lifted from https://h3geo.org/docs/core-library/restable/
var edgeLengths = [16]float64{
	1_107_712.59,
	418_676.01,
	158_244.62,
	59_810.86,
	22_606.38,
	8_544.41,
	3_229.48,
	1_220.63,
	461.36,
	174.38,
	65.91,
	24.91,
	9.42,
	3.56,
	1.35,
	0.51,
}

// defaultTargetK is the grid-distance target used to pick the
// covering-disk resolution for LatLngWithin preheaters: "~4 is a good
// balance for shape accuracy vs performance" per the original geotools
// design.
const defaultTargetK = 4

// resolutionWithinK selects the coarsest H3 resolution whose average
// edge length is small enough to fit targetK times within radiusM. A
// targetK of zero always returns resolution 0.
func resolutionWithinK(radiusM float64, targetK uint32) int {
	if targetK == 0 {
		return 0
	}
	targetEdge := radiusM / float64(targetK)
	for res, edge := range edgeLengths {
		if edge <= targetEdge {
			return res
		}
	}
	return 15
}

// diskCovering returns a set of H3 cells at the given resolution
// guaranteed to cover the disk of radiusM meters around center. Grid
// cells are kept when their center lies within radiusM plus two
// average edge lengths of center, a margin larger than a cell's
// center-to-vertex distance, so no cell overlapping the disk is
// dropped. Always returns at least one cell (the center cell) even for
// a zero radius.
func diskCovering(center h3.LatLng, radiusM float64, res int) []h3.Cell {
	centerCell, err := h3.LatLngToCell(center, res)
	if err != nil {
		return nil
	}

	edgeLen := edgeLengths[res]
	k := int(math.Ceil(radiusM/edgeLen)) + 1

	disk, err := h3.GridDisk(centerCell, k)
	if err != nil {
		return []h3.Cell{centerCell}
	}

	var filtered []h3.Cell
	for _, cell := range disk {
		cellCenter := h3.CellToLatLng(cell)
		if greatCircleDistanceM(center, cellCenter) <= radiusM+2*edgeLen {
			filtered = append(filtered, cell)
		}
	}
	if len(filtered) == 0 {
		return []h3.Cell{centerCell}
	}
	return filtered
}

const earthRadiusM = 6_371_008.8

// greatCircleDistanceM returns the haversine great-circle distance
// between two lat/lng points, in meters.
func greatCircleDistanceM(a, b h3.LatLng) float64 {
	lat1, lng1 := a.Lat*math.Pi/180, a.Lng*math.Pi/180
	lat2, lng2 := b.Lat*math.Pi/180, b.Lng*math.Pi/180

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// parseLatLng parses a "lat,lng" pair. Unusual numeric forms (thousand
// separators, exponential notation) are not special-cased either way
// — this mirrors an ambiguity left unresolved in the system this was
// modeled on; strconv.ParseFloat's own rules apply as-is.
func parseLatLng(s string) (h3.LatLng, bool) {
	lat, lng, ok := splitTwo(s)
	if !ok {
		return h3.LatLng{}, false
	}
	latF, latOK := parseFloatStrict(lat)
	lngF, lngOK := parseFloatStrict(lng)
	if !latOK || !lngOK {
		return h3.LatLng{}, false
	}
	if latF < -90 || latF > 90 || lngF < -180 || lngF > 180 {
		return h3.LatLng{}, false
	}
	return h3.LatLng{Lat: latF, Lng: lngF}, true
}

// parseLatLngWithin parses a "lat,lng,radius_m" triple. The radius
// must parse as a non-negative integer (no decimals), matching the
// original's u64 radius field.
func parseLatLngWithin(s string) (h3.LatLng, uint64, bool) {
	parts := splitN(s, 3)
	if len(parts) != 3 {
		return h3.LatLng{}, 0, false
	}
	ll, ok := parseLatLng(parts[0] + "," + parts[1])
	if !ok {
		return h3.LatLng{}, 0, false
	}
	radius, ok := parseUintStrict(parts[2])
	if !ok {
		return h3.LatLng{}, 0, false
	}
	return ll, radius, true
}
