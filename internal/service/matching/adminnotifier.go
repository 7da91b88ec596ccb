package matching

import (
	"context"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
)

// AdminNotifier sends best-effort alerts to the configured administrator
// channel. A send failure is logged but never propagated: the per-booking
// timer is the safety net, not this call.
type AdminNotifier struct {
	channel AdminChannel
	log     logger.Logger
}

func NewAdminNotifier(channel AdminChannel, log logger.Logger) *AdminNotifier {
	return &AdminNotifier{channel: channel, log: log}
}

// AlertNoDriverAvailable is sent exactly once per booking-level timeout: the
// per-booking timer fired, or the selector returned no eligible drivers.
func (n *AdminNotifier) AlertNoDriverAvailable(ctx context.Context, booking models.Booking) {
	ctx = wrap.WithAction(ctx, types.ActionAdminAlert)
	payload := map[string]any{
		"booking_id":     booking.ID.String(),
		"customer_phone": booking.CustomerPhone,
		"pickup_address": booking.PickupAddress,
		"drop_address":   booking.DropAddress,
	}
	if booking.ScheduledAt != nil {
		payload["scheduled_at"] = booking.ScheduledAt.Format(time.RFC3339)
	}
	if err := n.channel.Alert(ctx, "no_driver_available", payload); err != nil {
		n.log.Warn(ctx, "admin alert failed", "booking_id", booking.ID.String(), "err", err.Error())
	}
}

// AlertSystemError reports an unexpected failure outside the normal
// precondition/race-lost taxonomy, e.g. a persistence error the per-booking
// timer cannot catch in time.
func (n *AdminNotifier) AlertSystemError(ctx context.Context, where string, err error) {
	ctx = wrap.WithAction(ctx, types.ActionAdminAlert)
	if sendErr := n.channel.Alert(ctx, "system_error", map[string]any{
		"context": where,
		"error":   err.Error(),
	}); sendErr != nil {
		n.log.Warn(ctx, "admin alert failed", "err", sendErr.Error())
	}
}

// AlertLowAvailability reports that a zone or the whole fleet is thin on
// eligible drivers; not on the core matching path but exposed for the same
// administrative boundary.
func (n *AdminNotifier) AlertLowAvailability(ctx context.Context, zone string, eligibleCount int) {
	ctx = wrap.WithAction(ctx, types.ActionAdminAlert)
	if err := n.channel.Alert(ctx, "low_availability", map[string]any{
		"zone":           zone,
		"eligible_count": eligibleCount,
	}); err != nil {
		n.log.Warn(ctx, "admin alert failed", "err", err.Error())
	}
}
