package matching

import (
	"context"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

func TestMetricsAggregator_StartAttemptCreatesActiveRow(t *testing.T) {
	repo := &fakeMetricsRepo{}
	agg := NewMetricsAggregator(repo)

	bookingID := uuid.New()
	if err := agg.StartAttempt(context.Background(), bookingID, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created == nil || repo.created.FinalStatus != types.MetricActive || repo.created.TotalNotified != 3 {
		t.Fatalf("want an ACTIVE row with totalNotified 3, got %+v", repo.created)
	}
}

func TestMetricsAggregator_FinishSetsFinalStatus(t *testing.T) {
	repo := &fakeMetricsRepo{}
	agg := NewMetricsAggregator(repo)

	bookingID := uuid.New()
	now := time.Now()
	elapsed := 42
	if err := agg.Finish(context.Background(), bookingID, types.MetricMatched, &now, &elapsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.finalStatusCall != 1 || repo.finalStatusSet != types.MetricMatched {
		t.Fatalf("want final status MATCHED recorded once, got calls=%d status=%s", repo.finalStatusCall, repo.finalStatusSet)
	}
}

func TestMetricsAggregator_RecordResponseDelegatesToRepo(t *testing.T) {
	repo := &fakeMetricsRepo{}
	agg := NewMetricsAggregator(repo)

	if err := agg.RecordResponse(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.incrementCalls != 1 {
		t.Fatalf("want IncrementResponded called once, got %d", repo.incrementCalls)
	}
}
