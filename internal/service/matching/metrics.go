package matching

import (
	"context"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/metrics"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// MetricsAggregator is a thin wrapper over MatchingMetric rows: creation,
// the monotone totalResponded increment, and the single-shot finalStatus
// transition. It also mirrors the same events into the process-wide
// Prometheus vectors every other service in the process exports, so matching
// activity shows up next to HTTP/DB/queue metrics on the same dashboard.
type MetricsAggregator struct {
	repo MetricsRepository
}

func NewMetricsAggregator(repo MetricsRepository) *MetricsAggregator {
	return &MetricsAggregator{repo: repo}
}

func (a *MetricsAggregator) StartAttempt(ctx context.Context, bookingID uuid.UUID, totalNotified int) error {
	if err := a.repo.Create(ctx, &models.MatchingMetric{
		BookingID:      bookingID,
		TotalNotified:  totalNotified,
		TotalResponded: 0,
		FinalStatus:    types.MetricActive,
	}); err != nil {
		return err
	}
	metrics.MatchingOffersSent.Add(float64(totalNotified))
	return nil
}

// RecordResponse increments totalResponded, capped at totalNotified; a
// response arriving after the cap is a no-op (DESIGN.md open-question
// decision).
func (a *MetricsAggregator) RecordResponse(ctx context.Context, bookingID uuid.UUID) error {
	return a.repo.IncrementResponded(ctx, bookingID)
}

func (a *MetricsAggregator) Finish(ctx context.Context, bookingID uuid.UUID, status types.MetricStatus, acceptedAt *time.Time, timeToMatchSeconds *int) error {
	rows, err := a.repo.SetFinalStatus(ctx, bookingID, status, acceptedAt, timeToMatchSeconds)
	if err != nil {
		return err
	}
	if rows > 0 {
		metrics.MatchingOutcomesTotal.WithLabelValues(string(status)).Inc()
	}
	return nil
}

func (a *MetricsAggregator) Get(ctx context.Context, bookingID uuid.UUID) (*models.MatchingMetric, error) {
	return a.repo.Get(ctx, bookingID)
}
