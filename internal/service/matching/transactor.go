package matching

import (
	"context"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// AssignmentTransactor performs the optimistically-locked
// PENDING -> ACCEPTED(driver=d) transition. Two concurrent attempts for the
// same booking resolve to exactly one winner: the versioned conditional
// update in CompareAndAssign can match at most one row per version.
type AssignmentTransactor struct {
	tx      TxManager
	bookings BookingRepository
	metrics MetricsRepository
	clock   Clock
}

func NewAssignmentTransactor(tx TxManager, bookings BookingRepository, metrics MetricsRepository, clock Clock) *AssignmentTransactor {
	return &AssignmentTransactor{tx: tx, bookings: bookings, metrics: metrics, clock: clock}
}

// ErrRaceLost is returned when the conditional update matched no row: the
// booking moved out of PENDING since the caller last read it.
var ErrRaceLost = types.ErrAssignmentRaceLost

// Assign runs the five-step assignment sequence inside one
// transaction. On success it returns the driver-facing booking snapshot;
// on a lost race it returns ErrRaceLost and leaves the booking untouched.
func (t *AssignmentTransactor) Assign(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithBookingID(wrap.WithDriverID(ctx, driverID.String()), bookingID.String())

	var assigned *models.Booking
	err := t.tx.Do(ctx, func(ctx context.Context) error {
		booking, err := t.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		if booking.Status != types.BookingPending || booking.AssignedDriverID != nil {
			return ErrRaceLost
		}

		rows, err := t.bookings.CompareAndAssign(ctx, bookingID, driverID, booking.Version)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		if rows == 0 {
			return ErrRaceLost
		}

		now := t.clock.Now()
		elapsed := int(now.Sub(booking.CreatedAt).Seconds())
		if _, err := t.metrics.SetFinalStatus(ctx, bookingID, types.MetricMatched, &now, &elapsed); err != nil {
			return wrap.Error(ctx, err)
		}

		booking.Status = types.BookingAccepted
		booking.AssignedDriverID = &driverID
		booking.Version++
		assigned = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}
