package geo

import (
	"math"

	"github.com/harsh822v/DisasterSentinel-project/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// WGS84 coordinate pairs. Symmetric, and zero for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RingCentroid returns the arithmetic mean of a GeoJSON linear ring's
// [lon, lat] vertices. It is a coarse approximation, not a true polygon
// centroid. ok is false for an empty ring or malformed vertices.
func RingCentroid(ring [][]float64) (lat, lon float64, ok bool) {
	if len(ring) == 0 {
		return 0, 0, false
	}

	var sumLat, sumLon float64
	for _, vertex := range ring {
		if len(vertex) < 2 {
			return 0, 0, false
		}
		sumLon += vertex[0]
		sumLat += vertex[1]
	}

	n := float64(len(ring))
	return sumLat / n, sumLon / n, true
}

// FilterByRadius retains events within radiusKm great-circle distance of
// the given center. Events without valid coordinates are dropped.
func FilterByRadius(events []models.DisasterEvent, lat, lon, radiusKm float64) []models.DisasterEvent {
	filtered := make([]models.DisasterEvent, 0, len(events))
	for _, e := range events {
		if !e.ValidCoordinates() {
			continue
		}
		if DistanceKm(lat, lon, e.Latitude, e.Longitude) <= radiusKm {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
