package matching

import (
	"context"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/trm"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// BookingRepository is the persistence port for Booking reads and the
// single versioned conditional update the Assignment Transactor performs.
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// CompareAndAssign attempts the PENDING -> ACCEPTED transition
	// conditional on the booking's current version equalling expectedVersion.
	// rowsAffected == 0 means the race was lost.
	CompareAndAssign(ctx context.Context, bookingID uuid.UUID, driverID uuid.UUID, expectedVersion int32) (rowsAffected int64, err error)
	// SetCancelled moves a still-Pending booking to Cancelled. Idempotent:
	// a booking already Cancelled is left untouched and reports no error.
	SetCancelled(ctx context.Context, bookingID uuid.UUID, reason string) error
	// ListPending returns every booking still Pending, used by restart
	// recovery.
	ListPending(ctx context.Context) ([]models.Booking, error)
}

// DriverQueryRepository is the Driver Selector's read port.
type DriverQueryRepository interface {
	// EligibleDrivers returns every driver satisfying the eligibility
	// conjunction and not present in excludeIDs. Zone/distance filtering
	// and ordering are applied by the Selector, not the repository.
	EligibleDrivers(ctx context.Context, excludeIDs []uuid.UUID) ([]models.MatchingDriver, error)
	// GetByID returns a single driver's read model, used to resolve a
	// phone number for a superseded-offer notice and to populate a
	// status snapshot's assigned-driver details.
	GetByID(ctx context.Context, id uuid.UUID) (*models.MatchingDriver, error)
}

// NotificationRepository is the persistence port for per-offer records.
type NotificationRepository interface {
	Create(ctx context.Context, rec *models.NotificationRecord) error
	Get(ctx context.Context, bookingID, driverID uuid.UUID) (*models.NotificationRecord, error)
	// SetOutcome moves a record from PENDING to outcome, conditional on
	// it still being PENDING. rowsAffected == 0 means it already resolved.
	SetOutcome(ctx context.Context, bookingID, driverID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) (rowsAffected int64, err error)
	// ListPending returns every still-PENDING record for a booking.
	ListPending(ctx context.Context, bookingID uuid.UUID) ([]models.NotificationRecord, error)
	// SetOutcomeForPending bulk-transitions every PENDING record of a
	// booking to outcome (used for supersede-on-win and timeout sweeps).
	SetOutcomeForPending(ctx context.Context, bookingID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) ([]uuid.UUID, error)
}

// MetricsRepository is the persistence port for MatchingMetric rows.
type MetricsRepository interface {
	Create(ctx context.Context, m *models.MatchingMetric) error
	Get(ctx context.Context, bookingID uuid.UUID) (*models.MatchingMetric, error)
	// IncrementResponded performs the capped, monotone increment decided
	// in DESIGN.md's Open Question resolution.
	IncrementResponded(ctx context.Context, bookingID uuid.UUID) error
	// SetFinalStatus performs the single-shot ACTIVE -> final transition.
	// rowsAffected == 0 means it already left ACTIVE.
	SetFinalStatus(ctx context.Context, bookingID uuid.UUID, status types.MetricStatus, acceptedAt *time.Time, timeToMatchSeconds *int) (rowsAffected int64, err error)
}

// Messenger is the outbound boundary to drivers and customers: a
// fire-and-forget text send to an opaque phone identifier. Failures are
// logged by implementations but never abort a caller's broadcast.
type Messenger interface {
	Send(ctx context.Context, phone, text string) error
}

// AdminChannel is the transport AdminNotifier alerts over. Best-effort.
type AdminChannel interface {
	Alert(ctx context.Context, kind string, payload map[string]any) error
}

// EventPublisher emits matching-core lifecycle events for external
// collaborators (payment/trip records, analytics) that consume the outcome
// without participating in the matching transaction itself.
type EventPublisher interface {
	PublishBookingAssigned(ctx context.Context, bookingID, driverID uuid.UUID, timeToMatchSecs int) error
	PublishBookingTimeout(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// Clock is the time source every timer and metric reads from.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TxManager is re-exported so callers of this package don't need to
// import pkg/trm directly.
type TxManager = trm.TxManager
