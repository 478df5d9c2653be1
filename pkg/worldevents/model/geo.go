package model

import "math"

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether the coordinate lies within latitude/longitude range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lon)
}

// DistanceNM returns the great-circle distance between a and b in nautical
// miles (haversine).
func DistanceNM(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bounds is a latitude/longitude box. Boxes crossing the antimeridian are
// not supported.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Valid reports whether the box is well formed.
func (b Bounds) Valid() bool {
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon &&
		Coordinate{Lat: b.MinLat, Lon: b.MinLon}.Valid() &&
		Coordinate{Lat: b.MaxLat, Lon: b.MaxLon}.Valid()
}

// Contains reports whether c lies inside the box, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// IntersectsCircle reports whether a circle of radiusNM around center
// overlaps the box. The nearest point of the box to center is found by
// clamping, then measured by great-circle distance.
func (b Bounds) IntersectsCircle(center Coordinate, radiusNM float64) bool {
	if b.Contains(center) {
		return true
	}
	nearest := Coordinate{
		Lat: math.Max(b.MinLat, math.Min(center.Lat, b.MaxLat)),
		Lon: math.Max(b.MinLon, math.Min(center.Lon, b.MaxLon)),
	}
	return DistanceNM(center, nearest) <= radiusNM
}
