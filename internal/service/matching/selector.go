package matching

import (
	"context"
	"sort"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/internal/service/geo"
)

// DriverSelector queries eligible drivers for a booking and orders them.
// Selection is never truncated: every eligible driver that passes the
// zone/distance filters is returned.
type DriverSelector struct {
	drivers DriverQueryRepository
	zones   ZoneLocator
}

func NewDriverSelector(drivers DriverQueryRepository, zones ZoneLocator) *DriverSelector {
	return &DriverSelector{drivers: drivers, zones: zones}
}

// Select returns the ordered list of eligible drivers for booking, honoring
// opts.ExcludeDriverIDs, opts.MaxDistanceKm, and opts.PriorityMode.
func (s *DriverSelector) Select(ctx context.Context, booking models.Booking, opts models.MatchingOptions) ([]models.MatchingDriver, error) {
	candidates, err := s.drivers.EligibleDrivers(ctx, opts.ExcludeDriverIDs)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.MatchingDriver, 0, len(candidates))
	pickupZone, havePickupZone := s.zones.ZoneFor(booking.PickupLat, booking.PickupLon)

	for _, d := range candidates {
		if !d.Eligible() {
			continue
		}
		// A driver with no configured zones is treated as city-wide and
		// never excluded by the zone filter, even when a pickup zone is
		// known; zone membership only narrows drivers that opted into it.
		if havePickupZone && len(d.Zones) > 0 && !containsZone(d.Zones, pickupZone) {
			continue
		}
		if opts.MaxDistanceKm != nil && d.HasCoordinates() {
			dist := geo.HaversineDistance(booking.PickupLat, booking.PickupLon, *d.Lat, *d.Lon)
			if dist > *opts.MaxDistanceKm {
				continue
			}
		}
		filtered = append(filtered, d)
	}

	order(filtered, booking, opts.PriorityMode)
	return filtered, nil
}

func containsZone(zones []string, zone string) bool {
	for _, z := range zones {
		if z == zone {
			return true
		}
	}
	return false
}

// order sorts drivers in place per the requested priority mode.
// RECENT_ACTIVITY (default): lastSeenAt descending.
// DISTANCE: ascending distance to pickup; drivers without coordinates sort
// last, then by lastSeenAt descending.
func order(drivers []models.MatchingDriver, booking models.Booking, mode types.PriorityMode) {
	switch mode {
	case types.PriorityDistance:
		sort.SliceStable(drivers, func(i, j int) bool {
			di, dj := drivers[i], drivers[j]
			iHas, jHas := di.HasCoordinates(), dj.HasCoordinates()
			if iHas != jHas {
				return iHas // drivers with coordinates sort first
			}
			if !iHas {
				return di.LastSeenAt.After(dj.LastSeenAt)
			}
			distI := geo.HaversineDistance(booking.PickupLat, booking.PickupLon, *di.Lat, *di.Lon)
			distJ := geo.HaversineDistance(booking.PickupLat, booking.PickupLon, *dj.Lat, *dj.Lon)
			return distI < distJ
		})
	default:
		sort.SliceStable(drivers, func(i, j int) bool {
			return drivers[i].LastSeenAt.After(drivers[j].LastSeenAt)
		})
	}
}
