package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records map[string]*models.NotificationRecord
	createErrFor uuid.UUID
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: make(map[string]*models.NotificationRecord)}
}

func key(bookingID, driverID uuid.UUID) string { return bookingID.String() + ":" + driverID.String() }

func (f *fakeNotificationRepo) Create(ctx context.Context, rec *models.NotificationRecord) error {
	if rec.DriverID == f.createErrFor {
		return errors.New("forced create failure")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records[key(rec.BookingID, rec.DriverID)] = &cp
	return nil
}

func (f *fakeNotificationRepo) Get(ctx context.Context, bookingID, driverID uuid.UUID) (*models.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key(bookingID, driverID)]
	if !ok {
		return nil, types.ErrNotificationNotFound
	}
	return rec, nil
}

func (f *fakeNotificationRepo) SetOutcome(ctx context.Context, bookingID, driverID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key(bookingID, driverID)]
	if !ok || rec.Outcome != types.NotificationPending {
		return 0, nil
	}
	rec.Outcome = outcome
	rec.RespondedAt = &respondedAt
	return 1, nil
}

func (f *fakeNotificationRepo) ListPending(ctx context.Context, bookingID uuid.UUID) ([]models.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificationRecord
	for _, rec := range f.records {
		if rec.BookingID == bookingID && rec.Outcome == types.NotificationPending {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) SetOutcomeForPending(ctx context.Context, bookingID uuid.UUID, outcome types.NotificationOutcome, respondedAt time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, rec := range f.records {
		if rec.BookingID == bookingID && rec.Outcome == types.NotificationPending {
			rec.Outcome = outcome
			rec.RespondedAt = &respondedAt
			ids = append(ids, rec.DriverID)
		}
	}
	return ids, nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	sentTo   []string
	failFor  string
}

func (m *fakeMessenger) Send(ctx context.Context, phone, text string) error {
	if phone == m.failFor {
		return errors.New("forced send failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentTo = append(m.sentTo, phone)
	return nil
}

func testLogger() logger.Logger {
	return logger.InitLogger("matching-test", logger.LevelDebug)
}

func TestBroadcastDispatcher_NotifiesEveryDriver(t *testing.T) {
	repo := newFakeNotificationRepo()
	msgr := &fakeMessenger{}
	d := NewBroadcastDispatcher(repo, msgr, fixedClock{time.Now()}, testLogger())

	booking := models.Booking{ID: uuid.New(), PickupAddress: "A", DropAddress: "B"}
	drivers := []models.MatchingDriver{
		{ID: uuid.New(), Phone: "+1000"},
		{ID: uuid.New(), Phone: "+2000"},
	}

	result := d.Broadcast(context.Background(), booking, drivers, 30)
	if len(result.NotifiedDriverIDs) != 2 {
		t.Fatalf("want 2 notified drivers, got %d", len(result.NotifiedDriverIDs))
	}
	if len(result.SendErrors) != 0 {
		t.Fatalf("expected no send errors, got %v", result.SendErrors)
	}
	for _, drv := range drivers {
		rec, err := repo.Get(context.Background(), booking.ID, drv.ID)
		if err != nil {
			t.Fatalf("expected a notification record for %s: %v", drv.ID, err)
		}
		if rec.Outcome != types.NotificationPending {
			t.Fatalf("new record should be PENDING, got %s", rec.Outcome)
		}
	}
}

func TestBroadcastDispatcher_SendFailureDoesNotAbortOthers(t *testing.T) {
	repo := newFakeNotificationRepo()
	msgr := &fakeMessenger{failFor: "+1000"}
	d := NewBroadcastDispatcher(repo, msgr, fixedClock{time.Now()}, testLogger())

	booking := models.Booking{ID: uuid.New()}
	drivers := []models.MatchingDriver{
		{ID: uuid.New(), Phone: "+1000"},
		{ID: uuid.New(), Phone: "+2000"},
	}

	result := d.Broadcast(context.Background(), booking, drivers, 30)
	if len(result.NotifiedDriverIDs) != 2 {
		t.Fatalf("a failed send must still leave the record PENDING and counted as notified, got %d", len(result.NotifiedDriverIDs))
	}
	if len(result.SendErrors) != 1 {
		t.Fatalf("want 1 send error recorded, got %d", len(result.SendErrors))
	}
}

func TestBroadcastDispatcher_CreateFailureExcludesDriver(t *testing.T) {
	repo := newFakeNotificationRepo()
	failing := uuid.New()
	repo.createErrFor = failing
	msgr := &fakeMessenger{}
	d := NewBroadcastDispatcher(repo, msgr, fixedClock{time.Now()}, testLogger())

	booking := models.Booking{ID: uuid.New()}
	drivers := []models.MatchingDriver{
		{ID: failing, Phone: "+1000"},
		{ID: uuid.New(), Phone: "+2000"},
	}

	result := d.Broadcast(context.Background(), booking, drivers, 30)
	if len(result.NotifiedDriverIDs) != 1 {
		t.Fatalf("driver whose record failed to persist must not count as notified, got %d", len(result.NotifiedDriverIDs))
	}
}
