package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for all edge weights.
const EarthRadiusMiles = 3958.756

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// Haversine returns the great-circle distance in miles between two
// latitude/longitude pairs given in degrees.
//
// The result is symmetric in its arguments and zero for coincident points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1 = Radians(lat1)
	lon1 = Radians(lon1)
	lat2 = Radians(lat2)
	lon2 = Radians(lon2)

	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLon := math.Sin((lon2 - lon1) / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(a))
}

// ValidCoordinate reports whether lat/lon are finite and inside the WGS84 range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
