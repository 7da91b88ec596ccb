package matching

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

func TestTimeoutManager_ArmDriverTimeoutFires(t *testing.T) {
	m := NewTimeoutManager(testLogger())
	bookingID, driverID := uuid.New(), uuid.New()

	var fired int32
	m.ArmDriverTimeout(bookingID, driverID, 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("want timer to fire once, got %d", fired)
	}
}

func TestTimeoutManager_CancelDriverTimeoutPreventsFire(t *testing.T) {
	m := NewTimeoutManager(testLogger())
	bookingID, driverID := uuid.New(), uuid.New()

	var fired int32
	m.ArmDriverTimeout(bookingID, driverID, 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.CancelDriverTimeout(bookingID, driverID)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("cancelled timer must not fire, got %d", fired)
	}
}

func TestTimeoutManager_RearmingCancelsPreviousTimer(t *testing.T) {
	m := NewTimeoutManager(testLogger())
	bookingID, driverID := uuid.New(), uuid.New()

	var firstFired, secondFired int32
	m.ArmDriverTimeout(bookingID, driverID, 10*time.Millisecond, func() {
		atomic.AddInt32(&firstFired, 1)
	})
	m.ArmDriverTimeout(bookingID, driverID, 20*time.Millisecond, func() {
		atomic.AddInt32(&secondFired, 1)
	})

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&firstFired) != 0 {
		t.Fatalf("re-arming must cancel the previous timer, but it fired")
	}
	if atomic.LoadInt32(&secondFired) != 1 {
		t.Fatalf("want the second timer to fire, got %d", secondFired)
	}
}

func TestTimeoutManager_ClearAllTimeoutsCancelsBookingAndDriverTimers(t *testing.T) {
	m := NewTimeoutManager(testLogger())
	bookingID := uuid.New()
	driverA, driverB := uuid.New(), uuid.New()

	var bookingFired, driverAFired, driverBFired int32
	m.ArmBookingTimeout(bookingID, 10*time.Millisecond, func() { atomic.AddInt32(&bookingFired, 1) })
	m.ArmDriverTimeout(bookingID, driverA, 10*time.Millisecond, func() { atomic.AddInt32(&driverAFired, 1) })
	m.ArmDriverTimeout(bookingID, driverB, 10*time.Millisecond, func() { atomic.AddInt32(&driverBFired, 1) })

	m.ClearAllTimeouts(bookingID)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&bookingFired)+atomic.LoadInt32(&driverAFired)+atomic.LoadInt32(&driverBFired) != 0 {
		t.Fatalf("ClearAllTimeouts must cancel every timer for the booking")
	}
}

func TestTimeoutManager_ClearAllTimeoutsDoesNotAffectOtherBookings(t *testing.T) {
	m := NewTimeoutManager(testLogger())
	cleared := uuid.New()
	other := uuid.New()
	otherDriver := uuid.New()

	var otherFired int32
	m.ArmDriverTimeout(other, otherDriver, 10*time.Millisecond, func() { atomic.AddInt32(&otherFired, 1) })

	m.ClearAllTimeouts(cleared)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&otherFired) != 1 {
		t.Fatalf("clearing an unrelated booking must not cancel this booking's timer")
	}
}
