package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// NotificationRepo is the matching core's NotificationRepository port over
// notification_records, unique on (booking_id, driver_id).
type NotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, rec *models.NotificationRecord) error {
	const op = "NotificationRepo.Create"
	query := `
		INSERT INTO notification_records (booking_id, driver_id, sent_at, outcome, method)
		VALUES ($1, $2, $3, $4, $5);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, rec.BookingID, rec.DriverID, rec.SentAt, rec.Outcome, rec.Method); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, bookingID, driverID uuid.UUID) (*models.NotificationRecord, error) {
	const op = "NotificationRepo.Get"
	query := `
		SELECT booking_id, driver_id, sent_at, responded_at, outcome, method
		FROM notification_records
		WHERE booking_id = $1 AND driver_id = $2;`

	var rec models.NotificationRecord
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, bookingID, driverID).Scan(
		&rec.BookingID, &rec.DriverID, &rec.SentAt, &rec.RespondedAt, &rec.Outcome, &rec.Method,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotificationNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &rec, nil
}

// SetOutcome moves a record from PENDING to outcome. The WHERE clause
// enforces the at-most-one-terminal-transition invariant: a second writer
// racing for the same (booking, driver) sees rowsAffected == 0.
func (r *NotificationRepo) SetOutcome(ctx context.Context, bookingID, driverID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) (int64, error) {
	const op = "NotificationRepo.SetOutcome"
	query := `
		UPDATE notification_records
		SET outcome = $3, responded_at = $4
		WHERE booking_id = $1 AND driver_id = $2 AND outcome = $5;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, bookingID, driverID, outcome, respondedAt, types.NotificationPending)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepo) ListPending(ctx context.Context, bookingID uuid.UUID) ([]models.NotificationRecord, error) {
	const op = "NotificationRepo.ListPending"
	query := `
		SELECT booking_id, driver_id, sent_at, responded_at, outcome, method
		FROM notification_records
		WHERE booking_id = $1 AND outcome = $2;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, bookingID, types.NotificationPending)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var out []models.NotificationRecord
	for rows.Next() {
		var rec models.NotificationRecord
		if err := rows.Scan(&rec.BookingID, &rec.DriverID, &rec.SentAt, &rec.RespondedAt, &rec.Outcome, &rec.Method); err != nil {
			ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SetOutcomeForPending bulk-transitions every still-PENDING record of a
// booking, returning the driver ids actually moved.
func (r *NotificationRepo) SetOutcomeForPending(ctx context.Context, bookingID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) ([]uuid.UUID, error) {
	const op = "NotificationRepo.SetOutcomeForPending"
	query := `
		UPDATE notification_records
		SET outcome = $2, responded_at = $3
		WHERE booking_id = $1 AND outcome = $4
		RETURNING driver_id;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, bookingID, outcome, respondedAt, types.NotificationPending)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
