package geo

import "math"

const earthRadiusMiles = 3958.8

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// IsZero reports whether the coordinate is the unset zero value.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Miles returns the great-circle distance between two coordinates using the
// haversine formula, rounded to 2 decimal places so downstream fee math
// stays stable.
func Miles(from, to Coordinate) float64 {
	dLat := degreesToRadians(to.Lat - from.Lat)
	dLon := degreesToRadians(to.Lon - from.Lon)

	rLat1 := degreesToRadians(from.Lat)
	rLat2 := degreesToRadians(to.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round2(earthRadiusMiles * c)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
