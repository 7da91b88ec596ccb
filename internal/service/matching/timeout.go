package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// TimeoutManager owns the two tiers of in-memory timers the matching core
// schedules: a short per-driver deadline and a long per-booking deadline.
// It is the only component that touches the timer registry; everything
// else interacts with it through Arm/Cancel/ClearAll. Modelled on the
// mutex-guarded connection registry in pkg/wsHub/hub.go, generalized from
// websocket connections to time.AfterFunc handles.
type TimeoutManager struct {
	mu            sync.Mutex
	driverTimers  map[string]*time.Timer // key: bookingID/driverID
	bookingTimers map[string]*time.Timer // key: bookingID
	log           logger.Logger
}

func NewTimeoutManager(log logger.Logger) *TimeoutManager {
	return &TimeoutManager{
		driverTimers:  make(map[string]*time.Timer),
		bookingTimers: make(map[string]*time.Timer),
		log:           log,
	}
}

func driverKey(bookingID, driverID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", bookingID, driverID)
}

// ArmDriverTimeout schedules fn to run after d, keyed by (bookingID, driverID).
// Re-arming the same key cancels the previous timer first (idempotent).
func (m *TimeoutManager) ArmDriverTimeout(bookingID, driverID uuid.UUID, d time.Duration, fn func()) {
	key := driverKey(bookingID, driverID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.driverTimers[key]; ok {
		existing.Stop()
	}
	m.driverTimers[key] = time.AfterFunc(d, fn)
}

// CancelDriverTimeout cancels the per-driver timer if one is armed.
// Idempotent: cancelling an absent timer is a no-op.
func (m *TimeoutManager) CancelDriverTimeout(bookingID, driverID uuid.UUID) {
	key := driverKey(bookingID, driverID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.driverTimers[key]; ok {
		t.Stop()
		delete(m.driverTimers, key)
	}
}

// ArmBookingTimeout schedules fn to run after d, keyed by bookingID.
func (m *TimeoutManager) ArmBookingTimeout(bookingID uuid.UUID, d time.Duration, fn func()) {
	key := bookingID.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.bookingTimers[key]; ok {
		existing.Stop()
	}
	m.bookingTimers[key] = time.AfterFunc(d, fn)
}

// CancelBookingTimeout cancels the per-booking timer if one is armed.
func (m *TimeoutManager) CancelBookingTimeout(bookingID uuid.UUID) {
	key := bookingID.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.bookingTimers[key]; ok {
		t.Stop()
		delete(m.bookingTimers, key)
	}
}

// ClearAllTimeouts removes the per-booking timer and every per-driver timer
// belonging to bookingID.
func (m *TimeoutManager) ClearAllTimeouts(bookingID uuid.UUID) {
	prefix := bookingID.String() + "/"
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.bookingTimers[bookingID.String()]; ok {
		t.Stop()
		delete(m.bookingTimers, bookingID.String())
	}
	for key, t := range m.driverTimers {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			t.Stop()
			delete(m.driverTimers, key)
		}
	}
}

// contextForTimer returns a fresh background context for a timer callback:
// callbacks run off the calling goroutine's context and must re-read
// persistent state rather than trust anything captured by reference.
func contextForTimer() context.Context {
	return context.Background()
}
