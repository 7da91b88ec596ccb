package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

type fakeAdminChannel struct {
	mu     sync.Mutex
	alerts []string
}

func (f *fakeAdminChannel) Alert(ctx context.Context, kind string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, kind)
	return nil
}

type fakeEventPublisher struct {
	mu         sync.Mutex
	assigned   int
	timedOut   int
}

func (f *fakeEventPublisher) PublishBookingAssigned(ctx context.Context, bookingID, driverID uuid.UUID, timeToMatchSecs int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned++
	return nil
}

func (f *fakeEventPublisher) PublishBookingTimeout(ctx context.Context, bookingID uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timedOut++
	return nil
}

// coordinatorHarness wires a Coordinator over fakes so the three public
// operations can be exercised without a database or broker.
type coordinatorHarness struct {
	bookings      *fakeBookingRepo
	notifications *fakeNotificationRepo
	drivers       *fakeDriverQueryRepo
	metricsRepo   *fakeMetricsRepo
	messenger     *fakeMessenger
	admin         *fakeAdminChannel
	events        *fakeEventPublisher
	coordinator   *Coordinator
}

func newCoordinatorHarness(booking *models.Booking, drivers []models.MatchingDriver) *coordinatorHarness {
	h := &coordinatorHarness{
		bookings:      &fakeBookingRepo{booking: booking, rowsOnAssign: 1},
		notifications: newFakeNotificationRepo(),
		drivers:       &fakeDriverQueryRepo{drivers: drivers},
		metricsRepo:   &fakeMetricsRepo{},
		messenger:     &fakeMessenger{},
		admin:         &fakeAdminChannel{},
		events:        &fakeEventPublisher{},
	}

	selector := NewDriverSelector(h.drivers, NoZoneLocator{})
	dispatcher := NewBroadcastDispatcher(h.notifications, h.messenger, SystemClock{}, testLogger())
	transactor := NewAssignmentTransactor(noopTxManager{}, h.bookings, h.metricsRepo, SystemClock{})
	timeouts := NewTimeoutManager(testLogger())
	metrics := NewMetricsAggregator(h.metricsRepo)
	admin := NewAdminNotifier(h.admin, testLogger())

	h.coordinator = NewCoordinator(
		h.bookings, h.notifications, h.drivers,
		selector, dispatcher, transactor, timeouts, metrics, admin,
		h.messenger, h.events, SystemClock{}, testLogger(),
	)
	return h
}

func pendingBooking(id uuid.UUID) *models.Booking {
	return &models.Booking{
		ID:            id,
		Status:        types.BookingPending,
		Version:       0,
		CreatedAt:     time.Now(),
		CustomerPhone: "+1555",
	}
}

func TestCoordinator_StartMatching_NoEligibleDriversResolvesImmediately(t *testing.T) {
	bookingID := uuid.New()
	h := newCoordinatorHarness(pendingBooking(bookingID), nil)

	result, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatalf("expected Success=false when no drivers are eligible")
	}
	if len(h.admin.alerts) != 1 || h.admin.alerts[0] != "no_driver_available" {
		t.Fatalf("expected a no_driver_available admin alert, got %v", h.admin.alerts)
	}
	if h.events.timedOut != 1 {
		t.Fatalf("expected one booking-timeout event published, got %d", h.events.timedOut)
	}
}

func TestCoordinator_StartMatching_NotifiesEligibleDrivers(t *testing.T) {
	bookingID := uuid.New()
	drv := eligibleDriver(uuid.New(), 1, 1, time.Now())
	drv.Phone = "+1999"
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{drv})

	result, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.DriversNotified != 1 {
		t.Fatalf("expected one driver notified, got %+v", result)
	}
}

func TestCoordinator_StartMatching_RejectsNonPendingBooking(t *testing.T) {
	bookingID := uuid.New()
	booking := pendingBooking(bookingID)
	booking.Status = types.BookingAccepted
	h := newCoordinatorHarness(booking, nil)

	_, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{})
	if err != types.ErrBookingNotPending {
		t.Fatalf("want ErrBookingNotPending, got %v", err)
	}
}

func TestCoordinator_HandleDriverResponse_AcceptAssignsAndSupersedesOthers(t *testing.T) {
	bookingID := uuid.New()
	winner := eligibleDriver(uuid.New(), 1, 1, time.Now())
	loser := eligibleDriver(uuid.New(), 1, 1, time.Now())
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{winner, loser})

	if _, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{}); err != nil {
		t.Fatalf("StartMatching failed: %v", err)
	}

	action, err := h.coordinator.HandleDriverResponse(context.Background(), bookingID, winner.ID, models.DriverResponse{Type: types.ResponseAccept})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != types.ActionAssigned {
		t.Fatalf("want ActionAssigned, got %s", action)
	}
	if h.bookings.booking.Status != types.BookingAccepted || h.bookings.booking.AssignedDriverID == nil {
		t.Fatalf("underlying booking was not assigned")
	}
	if h.events.assigned != 1 {
		t.Fatalf("expected one booking-assigned event, got %d", h.events.assigned)
	}

	loserRec, err := h.notifications.Get(context.Background(), bookingID, loser.ID)
	if err != nil {
		t.Fatalf("expected a record for the losing driver: %v", err)
	}
	if loserRec.Outcome != types.NotificationSuperseded {
		t.Fatalf("losing driver's record should be SUPERSEDED, got %s", loserRec.Outcome)
	}
}

func TestCoordinator_HandleDriverResponse_SecondAcceptLosesRace(t *testing.T) {
	bookingID := uuid.New()
	first := eligibleDriver(uuid.New(), 1, 1, time.Now())
	second := eligibleDriver(uuid.New(), 1, 1, time.Now())
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{first, second})

	if _, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{}); err != nil {
		t.Fatalf("StartMatching failed: %v", err)
	}

	if _, err := h.coordinator.HandleDriverResponse(context.Background(), bookingID, first.ID, models.DriverResponse{Type: types.ResponseAccept}); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	action, err := h.coordinator.HandleDriverResponse(context.Background(), bookingID, second.ID, models.DriverResponse{Type: types.ResponseAccept})
	if err != nil {
		t.Fatalf("unexpected error on second accept: %v", err)
	}
	if action != types.ActionAlreadyTaken {
		t.Fatalf("want ActionAlreadyTaken for the losing second accept, got %s", action)
	}
}

func TestCoordinator_HandleDriverResponse_RejectDoesNotAssign(t *testing.T) {
	bookingID := uuid.New()
	drv := eligibleDriver(uuid.New(), 1, 1, time.Now())
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{drv})

	if _, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{}); err != nil {
		t.Fatalf("StartMatching failed: %v", err)
	}

	action, err := h.coordinator.HandleDriverResponse(context.Background(), bookingID, drv.ID, models.DriverResponse{Type: types.ResponseReject})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != types.ActionRejected {
		t.Fatalf("want ActionRejected, got %s", action)
	}
	if h.bookings.booking.Status != types.BookingPending {
		t.Fatalf("a reject must not assign the booking")
	}
}

func TestCoordinator_CancelMatching_IsIdempotent(t *testing.T) {
	bookingID := uuid.New()
	drv := eligibleDriver(uuid.New(), 1, 1, time.Now())
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{drv})

	if _, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{}); err != nil {
		t.Fatalf("StartMatching failed: %v", err)
	}

	if err := h.coordinator.CancelMatching(context.Background(), bookingID, "customer_cancelled"); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := h.coordinator.CancelMatching(context.Background(), bookingID, "customer_cancelled"); err != nil {
		t.Fatalf("second cancel must also succeed (idempotent), got: %v", err)
	}
}

func TestCoordinator_Snapshot_IncludesAssignedDriver(t *testing.T) {
	bookingID := uuid.New()
	drv := eligibleDriver(uuid.New(), 1, 1, time.Now())
	h := newCoordinatorHarness(pendingBooking(bookingID), []models.MatchingDriver{drv})

	if _, err := h.coordinator.StartMatching(context.Background(), bookingID, models.MatchingOptions{}); err != nil {
		t.Fatalf("StartMatching failed: %v", err)
	}
	if _, err := h.coordinator.HandleDriverResponse(context.Background(), bookingID, drv.ID, models.DriverResponse{Type: types.ResponseAccept}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	snap, err := h.coordinator.Snapshot(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.AssignedDriver == nil || snap.AssignedDriver.ID != drv.ID {
		t.Fatalf("expected snapshot to include the assigned driver, got %+v", snap.AssignedDriver)
	}
}

func TestCoordinator_Recover_TimesOutExpiredBookingsImmediately(t *testing.T) {
	bookingID := uuid.New()
	booking := pendingBooking(bookingID)
	booking.CreatedAt = time.Now().Add(-time.Hour)
	h := newCoordinatorHarness(booking, nil)

	if err := h.coordinator.Recover(context.Background(), 30*time.Second, 5*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.metricsRepo.finalStatusCall != 1 || h.metricsRepo.finalStatusSet != types.MetricTimeout {
		t.Fatalf("expected recovery to immediately time out an expired booking, got calls=%d status=%s", h.metricsRepo.finalStatusCall, h.metricsRepo.finalStatusSet)
	}
}
