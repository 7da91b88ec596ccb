package admin

import "github.com/Temutjin2k/ride-hail-system/internal/service/geo"

// EarthRadiusKm is kept for call sites that referenced it directly.
const EarthRadiusKm = geo.EarthRadiusKm

// HaversineDistance delegates to the shared geo package so the admin
// dashboard's remaining-distance calculation and the matching core's
// distance-capped driver selection use the exact same formula.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.HaversineDistance(lat1, lon1, lat2, lon2)
}
