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

// MetricRepo is the matching core's MetricsRepository port over
// matching_metrics, keyed uniquely by booking_id.
type MetricRepo struct {
	db *pgxpool.Pool
}

func NewMetricRepo(db *pgxpool.Pool) *MetricRepo {
	return &MetricRepo{db: db}
}

func (r *MetricRepo) Create(ctx context.Context, m *models.MatchingMetric) error {
	const op = "MetricRepo.Create"
	query := `
		INSERT INTO matching_metrics (booking_id, total_notified, total_responded, final_status)
		VALUES ($1, $2, $3, $4);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, m.BookingID, m.TotalNotified, m.TotalResponded, m.FinalStatus); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *MetricRepo) Get(ctx context.Context, bookingID uuid.UUID) (*models.MatchingMetric, error) {
	const op = "MetricRepo.Get"
	query := `
		SELECT booking_id, total_notified, total_responded, accepted_at, time_to_match_seconds, final_status
		FROM matching_metrics
		WHERE booking_id = $1;`

	var m models.MatchingMetric
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, bookingID).Scan(
		&m.BookingID, &m.TotalNotified, &m.TotalResponded, &m.AcceptedAt, &m.TimeToMatchSeconds, &m.FinalStatus,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrMetricNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &m, nil
}

// IncrementResponded performs the capped, monotone increment: the WHERE
// clause refuses to advance past total_notified, so a response arriving
// after every driver has already resolved is a silent no-op.
func (r *MetricRepo) IncrementResponded(ctx context.Context, bookingID uuid.UUID) error {
	const op = "MetricRepo.IncrementResponded"
	query := `
		UPDATE matching_metrics
		SET total_responded = total_responded + 1
		WHERE booking_id = $1 AND total_responded < total_notified;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, bookingID); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// SetFinalStatus performs the single-shot ACTIVE -> final transition.
func (r *MetricRepo) SetFinalStatus(ctx context.Context, bookingID uuid.UUID, status types.MetricStatus, acceptedAt *time.Time, timeToMatchSeconds *int) (int64, error) {
	const op = "MetricRepo.SetFinalStatus"
	query := `
		UPDATE matching_metrics
		SET final_status = $2, accepted_at = $3, time_to_match_seconds = $4
		WHERE booking_id = $1 AND final_status = $5;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, bookingID, status, acceptedAt, timeToMatchSeconds, types.MetricActive)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return tag.RowsAffected(), nil
}
