package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// BookingRepo is the matching core's BookingRepository port. It reads and
// writes the bookings table, keeping the optimistic-concurrency version
// column private to CompareAndAssign.
type BookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	const op = "BookingRepo.GetByID"
	query := `
		SELECT id, status, assigned_driver_id, version, created_at,
		       customer_id, customer_phone,
		       pickup_address, pickup_lat, pickup_lon,
		       drop_address, drop_lat, drop_lon,
		       scheduled_at, passenger_count, estimated_fare_minor
		FROM bookings
		WHERE id = $1;`

	var b models.Booking
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Status, &b.AssignedDriverID, &b.Version, &b.CreatedAt,
		&b.CustomerID, &b.CustomerPhone,
		&b.PickupAddress, &b.PickupLat, &b.PickupLon,
		&b.DropAddress, &b.DropLat, &b.DropLon,
		&b.ScheduledAt, &b.PassengerCount, &b.EstimatedFareMinor,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrBookingNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &b, nil
}

// CompareAndAssign is the single conditional update backing the Assignment
// Transactor's race-resolving step: it matches at most one row per version.
func (r *BookingRepo) CompareAndAssign(ctx context.Context, bookingID, driverID uuid.UUID, expectedVersion int32) (int64, error) {
	const op = "BookingRepo.CompareAndAssign"
	query := `
		UPDATE bookings
		SET assigned_driver_id = $3, status = $4, version = version + 1
		WHERE id = $1 AND version = $2 AND status = $5 AND assigned_driver_id IS NULL;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, bookingID, expectedVersion, driverID, types.BookingAccepted, types.BookingPending)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return tag.RowsAffected(), nil
}

// SetCancelled moves a still-Pending booking to Cancelled. Idempotent: a
// booking already Cancelled (or otherwise resolved) matches no row and is
// reported as success.
func (r *BookingRepo) SetCancelled(ctx context.Context, bookingID uuid.UUID, reason string) error {
	const op = "BookingRepo.SetCancelled"
	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason = $3
		WHERE id = $1 AND status = $4;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, bookingID, types.BookingCancelled, reason, types.BookingPending); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ListPending returns every booking still Pending, used by restart recovery.
func (r *BookingRepo) ListPending(ctx context.Context) ([]models.Booking, error) {
	const op = "BookingRepo.ListPending"
	query := `
		SELECT id, status, assigned_driver_id, version, created_at,
		       customer_id, customer_phone,
		       pickup_address, pickup_lat, pickup_lon,
		       drop_address, drop_lat, drop_lon,
		       scheduled_at, passenger_count, estimated_fare_minor
		FROM bookings
		WHERE status = $1;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, types.BookingPending)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.Status, &b.AssignedDriverID, &b.Version, &b.CreatedAt,
			&b.CustomerID, &b.CustomerPhone,
			&b.PickupAddress, &b.PickupLat, &b.PickupLon,
			&b.DropAddress, &b.DropLat, &b.DropLon,
			&b.ScheduledAt, &b.PassengerCount, &b.EstimatedFareMinor,
		); err != nil {
			ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}
	return out, nil
}
