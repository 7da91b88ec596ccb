package matching

import "github.com/mmcloughlin/geohash"

// ZoneLocator resolves a coordinate pair to a zone identifier. It is
// intentionally pluggable so zone inference can vary by deployment
// instead of being hard-coded inside the Selector.
type ZoneLocator interface {
	// ZoneFor returns the zone a coordinate belongs to. ok is false when
	// no zone can be inferred, in which case the Selector skips zone
	// filtering entirely.
	ZoneFor(lat, lon float64) (zone string, ok bool)
}

// GeohashZoneLocator treats a fixed-precision geohash prefix as the zone
// identifier: any two coordinates sharing the same prefix are considered
// the same zone. Precision 5 (the default) covers roughly a 5km x 5km
// cell, which is a reasonable coarse zone size for urban dispatch without
// encoding any city-specific geography.
type GeohashZoneLocator struct {
	precision uint
}

// NewGeohashZoneLocator builds a locator at the given geohash precision.
// precision <= 0 falls back to 5.
func NewGeohashZoneLocator(precision int) *GeohashZoneLocator {
	if precision <= 0 {
		precision = 5
	}
	return &GeohashZoneLocator{precision: uint(precision)}
}

func (z *GeohashZoneLocator) ZoneFor(lat, lon float64) (string, bool) {
	full := geohash.Encode(lat, lon)
	if len(full) < int(z.precision) {
		return full, full != ""
	}
	return full[:z.precision], true
}

// NoZoneLocator never infers a zone, causing the Selector to always skip
// zone filtering. Useful where no geocoding data is configured.
type NoZoneLocator struct{}

func (NoZoneLocator) ZoneFor(float64, float64) (string, bool) { return "", false }
