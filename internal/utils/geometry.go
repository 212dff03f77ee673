package utils

import "math"

// RadiusOfEarthInMeters is the mean Earth radius.
const RadiusOfEarthInMeters = 6371010.0

const degToRad = math.Pi / 180

// CoordinateBounds is a latitude/longitude bounding box.
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Distance returns the distance in meters between two points on the Earth.
// Station lookups are always short range, so differences under 0.2 degrees
// (~22km) take an equirectangular fast path; anything longer uses the exact
// Vincenty spherical formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		midLatRad := (lat1 + lat2) / 2 * degToRad
		x := (lon2 - lon1) * degToRad * math.Cos(midLatRad)
		y := (lat2 - lat1) * degToRad
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	lat1Rad := lat1 * degToRad
	lat2Rad := lat2 * degToRad
	deltaLon := (lon2 - lon1) * degToRad

	y := math.Sqrt(math.Pow(math.Cos(lat2Rad)*math.Sin(deltaLon), 2) +
		math.Pow(math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon), 2))
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// CalculateBounds returns the bounding box centered on (lat, lon) that
// contains every point within distance meters. Longitude widens with
// latitude since meridians converge toward the poles.
func CalculateBounds(lat, lon, distance float64) CoordinateBounds {
	latRadians := lat * degToRad
	lonRadians := lon * degToRad

	latOffset := distance / RadiusOfEarthInMeters
	lonOffset := distance / (math.Cos(latRadians) * RadiusOfEarthInMeters)

	return CoordinateBounds{
		MinLat: (latRadians - latOffset) / degToRad,
		MaxLat: (latRadians + latOffset) / degToRad,
		MinLon: (lonRadians - lonOffset) / degToRad,
		MaxLon: (lonRadians + lonOffset) / degToRad,
	}
}
