package matching

import (
	"context"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

type fakeDriverQueryRepo struct {
	drivers []models.MatchingDriver
}

func (f *fakeDriverQueryRepo) EligibleDrivers(ctx context.Context, excludeIDs []uuid.UUID) ([]models.MatchingDriver, error) {
	excluded := make(map[uuid.UUID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []models.MatchingDriver
	for _, d := range f.drivers {
		if !excluded[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDriverQueryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MatchingDriver, error) {
	for _, d := range f.drivers {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, types.ErrMatchingDriverNotFound
}

func f64(v float64) *float64 { return &v }

func eligibleDriver(id uuid.UUID, lat, lon float64, lastSeen time.Time) models.MatchingDriver {
	return models.MatchingDriver{
		ID:          id,
		IsAvailable: true,
		IsOnline:    true,
		IsVerified:  true,
		IsActive:    true,
		Lat:         f64(lat),
		Lon:         f64(lon),
		LastSeenAt:  lastSeen,
	}
}

func TestDriverSelector_FiltersIneligible(t *testing.T) {
	ineligible := eligibleDriver(uuid.New(), 1, 1, time.Now())
	ineligible.IsAvailable = false

	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{
		eligibleDriver(uuid.New(), 1, 1, time.Now()),
		ineligible,
	}}
	sel := NewDriverSelector(repo, NoZoneLocator{})

	out, err := sel.Select(context.Background(), models.Booking{PickupLat: 1, PickupLon: 1}, models.MatchingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("want 1 eligible driver, got %d", len(out))
	}
}

func TestDriverSelector_ExcludesRequestedIDs(t *testing.T) {
	excludeMe := uuid.New()
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{
		eligibleDriver(excludeMe, 1, 1, time.Now()),
		eligibleDriver(uuid.New(), 1, 1, time.Now()),
	}}
	sel := NewDriverSelector(repo, NoZoneLocator{})

	out, err := sel.Select(context.Background(), models.Booking{}, models.MatchingOptions{ExcludeDriverIDs: []uuid.UUID{excludeMe}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range out {
		if d.ID == excludeMe {
			t.Fatalf("excluded driver %s was returned", excludeMe)
		}
	}
}

func TestDriverSelector_MaxDistanceFilter(t *testing.T) {
	near := eligibleDriver(uuid.New(), 0.01, 0.01, time.Now())
	far := eligibleDriver(uuid.New(), 10, 10, time.Now())
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{near, far}}
	sel := NewDriverSelector(repo, NoZoneLocator{})

	out, err := sel.Select(context.Background(), models.Booking{PickupLat: 0, PickupLon: 0}, models.MatchingOptions{MaxDistanceKm: f64(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != near.ID {
		t.Fatalf("expected only the near driver to survive the distance filter, got %+v", out)
	}
}

func TestDriverSelector_PriorityDistanceOrdersNearestFirst(t *testing.T) {
	near := eligibleDriver(uuid.New(), 0.01, 0.01, time.Now())
	far := eligibleDriver(uuid.New(), 5, 5, time.Now())
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{far, near}}
	sel := NewDriverSelector(repo, NoZoneLocator{})

	out, err := sel.Select(context.Background(), models.Booking{PickupLat: 0, PickupLon: 0}, models.MatchingOptions{PriorityMode: types.PriorityDistance})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != near.ID {
		t.Fatalf("expected near driver first, got %+v", out)
	}
}

func TestDriverSelector_PriorityRecentActivityOrdersNewestFirst(t *testing.T) {
	older := eligibleDriver(uuid.New(), 1, 1, time.Now().Add(-time.Hour))
	newer := eligibleDriver(uuid.New(), 1, 1, time.Now())
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{older, newer}}
	sel := NewDriverSelector(repo, NoZoneLocator{})

	out, err := sel.Select(context.Background(), models.Booking{}, models.MatchingOptions{PriorityMode: types.PriorityRecentActivity})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != newer.ID {
		t.Fatalf("expected most recently active driver first, got %+v", out)
	}
}

func TestDriverSelector_ZoneFilterSkippedWhenDriverHasNoZones(t *testing.T) {
	d := eligibleDriver(uuid.New(), 1, 1, time.Now())
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{d}}
	sel := NewDriverSelector(repo, NewGeohashZoneLocator(5))

	out, err := sel.Select(context.Background(), models.Booking{PickupLat: 1, PickupLon: 1}, models.MatchingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("driver with no assigned zones should not be filtered out, got %d", len(out))
	}
}

func TestDriverSelector_ZoneFilterExcludesDifferentZone(t *testing.T) {
	d := eligibleDriver(uuid.New(), 1, 1, time.Now())
	d.Zones = []string{"far-away-zone"}
	repo := &fakeDriverQueryRepo{drivers: []models.MatchingDriver{d}}
	sel := NewDriverSelector(repo, NewGeohashZoneLocator(5))

	out, err := sel.Select(context.Background(), models.Booking{PickupLat: 1, PickupLon: 1}, models.MatchingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("driver assigned to an unrelated zone should be filtered out, got %d", len(out))
	}
}
