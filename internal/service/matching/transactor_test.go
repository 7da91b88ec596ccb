package matching

import (
	"context"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// noopTxManager runs fn directly, with no real transaction: the fakes below
// don't need rollback semantics, just the call shape AssignmentTransactor
// expects.
type noopTxManager struct{}

func (noopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (noopTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	booking       *models.Booking
	rowsOnAssign  int64
	assignCalls   int
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, types.ErrBookingNotFound
	}
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBookingRepo) CompareAndAssign(ctx context.Context, bookingID, driverID uuid.UUID, expectedVersion int32) (int64, error) {
	f.assignCalls++
	if f.rowsOnAssign > 0 && f.booking != nil {
		f.booking.Status = types.BookingAccepted
		f.booking.AssignedDriverID = &driverID
		f.booking.Version++
	}
	return f.rowsOnAssign, nil
}

func (f *fakeBookingRepo) SetCancelled(ctx context.Context, bookingID uuid.UUID, reason string) error {
	return nil
}

func (f *fakeBookingRepo) ListPending(ctx context.Context) ([]models.Booking, error) {
	if f.booking == nil {
		return nil, nil
	}
	return []models.Booking{*f.booking}, nil
}

type fakeMetricsRepo struct {
	finalStatusSet  types.MetricStatus
	finalStatusCall int
	created         *models.MatchingMetric
	incrementCalls  int
}

func (f *fakeMetricsRepo) Create(ctx context.Context, m *models.MatchingMetric) error {
	f.created = m
	return nil
}
func (f *fakeMetricsRepo) Get(ctx context.Context, bookingID uuid.UUID) (*models.MatchingMetric, error) {
	return &models.MatchingMetric{BookingID: bookingID}, nil
}
func (f *fakeMetricsRepo) IncrementResponded(ctx context.Context, bookingID uuid.UUID) error {
	f.incrementCalls++
	return nil
}
func (f *fakeMetricsRepo) SetFinalStatus(ctx context.Context, bookingID uuid.UUID, status types.MetricStatus, acceptedAt *time.Time, timeToMatchSeconds *int) (int64, error) {
	f.finalStatusCall++
	f.finalStatusSet = status
	return 1, nil
}

func TestAssignmentTransactor_AssignSucceeds(t *testing.T) {
	bookingID, driverID := uuid.New(), uuid.New()
	bookings := &fakeBookingRepo{
		booking:      &models.Booking{ID: bookingID, Status: types.BookingPending, Version: 3, CreatedAt: time.Now().Add(-time.Minute)},
		rowsOnAssign: 1,
	}
	metrics := &fakeMetricsRepo{}
	tr := NewAssignmentTransactor(noopTxManager{}, bookings, metrics, SystemClock{})

	assigned, err := tr.Assign(context.Background(), bookingID, driverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assigned.Status != types.BookingAccepted {
		t.Fatalf("want status ACCEPTED, got %s", assigned.Status)
	}
	if assigned.AssignedDriverID == nil || *assigned.AssignedDriverID != driverID {
		t.Fatalf("want assigned driver %s, got %+v", driverID, assigned.AssignedDriverID)
	}
	if metrics.finalStatusCall != 1 || metrics.finalStatusSet != types.MetricMatched {
		t.Fatalf("expected metric finalized as MATCHED, got calls=%d status=%s", metrics.finalStatusCall, metrics.finalStatusSet)
	}
}

func TestAssignmentTransactor_RaceLostWhenAlreadyAssigned(t *testing.T) {
	bookingID, driverID := uuid.New(), uuid.New()
	already := uuid.New()
	bookings := &fakeBookingRepo{
		booking: &models.Booking{ID: bookingID, Status: types.BookingAccepted, AssignedDriverID: &already},
	}
	tr := NewAssignmentTransactor(noopTxManager{}, bookings, &fakeMetricsRepo{}, SystemClock{})

	_, err := tr.Assign(context.Background(), bookingID, driverID)
	if err != ErrRaceLost {
		t.Fatalf("want ErrRaceLost, got %v", err)
	}
}

func TestAssignmentTransactor_RaceLostWhenCompareAndAssignMatchesNoRow(t *testing.T) {
	bookingID, driverID := uuid.New(), uuid.New()
	bookings := &fakeBookingRepo{
		booking:      &models.Booking{ID: bookingID, Status: types.BookingPending, Version: 1},
		rowsOnAssign: 0,
	}
	tr := NewAssignmentTransactor(noopTxManager{}, bookings, &fakeMetricsRepo{}, SystemClock{})

	_, err := tr.Assign(context.Background(), bookingID, driverID)
	if err != ErrRaceLost {
		t.Fatalf("want ErrRaceLost, got %v", err)
	}
}
