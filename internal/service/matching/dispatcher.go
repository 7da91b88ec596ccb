package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// BroadcastDispatcher fans an offer out to every selected driver. Each send
// is independent: a failed send is collected and reported but never aborts
// the broadcast, and it leaves the NotificationRecord PENDING so it will
// eventually resolve via timeout.
type BroadcastDispatcher struct {
	notifications NotificationRepository
	messenger     Messenger
	clock         Clock
	log           logger.Logger
}

func NewBroadcastDispatcher(notifications NotificationRepository, messenger Messenger, clock Clock, log logger.Logger) *BroadcastDispatcher {
	return &BroadcastDispatcher{
		notifications: notifications,
		messenger:     messenger,
		clock:         clock,
		log:           log,
	}
}

// BroadcastResult is the outcome of fanning an offer out to drivers.
type BroadcastResult struct {
	NotifiedDriverIDs []uuid.UUID
	SendErrors        []string
}

// Broadcast creates one NotificationRecord per driver and emits one
// Messenger send per driver, concurrently.
func (d *BroadcastDispatcher) Broadcast(ctx context.Context, booking models.Booking, drivers []models.MatchingDriver, perDriverTimeoutSeconds int) BroadcastResult {
	ctx = wrap.WithAction(ctx, types.ActionBroadcastOffer)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		result  BroadcastResult
	)

	now := d.clock.Now()
	for _, drv := range drivers {
		rec := &models.NotificationRecord{
			BookingID: booking.ID,
			DriverID:  drv.ID,
			SentAt:    now,
			Outcome:   types.NotificationPending,
			Method:    "sms",
		}
		if err := d.notifications.Create(ctx, rec); err != nil {
			d.log.Error(ctx, "failed to create notification record", err, "driver_id", drv.ID.String())
			mu.Lock()
			result.SendErrors = append(result.SendErrors, fmt.Sprintf("driver %s: create notification: %v", drv.ID, err))
			mu.Unlock()
			continue
		}

		mu.Lock()
		result.NotifiedDriverIDs = append(result.NotifiedDriverIDs, drv.ID)
		mu.Unlock()

		wg.Add(1)
		go func(drv models.MatchingDriver) {
			defer wg.Done()
			text := offerText(booking, perDriverTimeoutSeconds)
			if err := d.messenger.Send(ctx, drv.Phone, text); err != nil {
				d.log.Warn(ctx, "offer send failed", "driver_id", drv.ID.String(), "err", err.Error())
				mu.Lock()
				result.SendErrors = append(result.SendErrors, fmt.Sprintf("driver %s: send: %v", drv.ID, err))
				mu.Unlock()
			}
		}(drv)
	}
	wg.Wait()

	return result
}

// SendSuperseded tells a still-pending driver that the booking went to
// someone else.
func (d *BroadcastDispatcher) SendSuperseded(ctx context.Context, phone string, bookingID uuid.UUID) {
	text := fmt.Sprintf("Booking %s has been assigned to another driver. Thanks for responding.", bookingID)
	if err := d.messenger.Send(ctx, phone, text); err != nil {
		d.log.Warn(ctx, "superseded notice send failed", "err", err.Error())
	}
}

func offerText(booking models.Booking, perDriverTimeoutSeconds int) string {
	scheduled := "now"
	if booking.ScheduledAt != nil {
		scheduled = booking.ScheduledAt.Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"New ride request: pickup %s, drop %s, scheduled %s, %d passenger(s), est. fare %d. Reply ACCEPT or REJECT within %ds.",
		booking.PickupAddress, booking.DropAddress, scheduled, booking.PassengerCount, booking.EstimatedFareMinor, perDriverTimeoutSeconds,
	)
}
