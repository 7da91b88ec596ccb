package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

const (
	defaultPerDriverTimeout  = 30 * time.Second
	defaultPerBookingTimeout = 300 * time.Second
)

// Coordinator is the public entry point of the matching core: it orchestrates
// the Selector, Dispatcher, Transactor, TimeoutManager, MetricsAggregator and
// AdminNotifier behind the operations the rest of the repo calls. All
// persistent state lives in bookings/notifications/metrics;
// Coordinator itself is stateless beyond the timer registry it owns.
type Coordinator struct {
	bookings      BookingRepository
	notifications NotificationRepository
	drivers       DriverQueryRepository

	selector   *DriverSelector
	dispatcher *BroadcastDispatcher
	transactor *AssignmentTransactor
	timeouts   *TimeoutManager
	metrics    *MetricsAggregator
	admin      *AdminNotifier

	messenger Messenger
	events    EventPublisher
	clock     Clock
	log       logger.Logger
}

func NewCoordinator(
	bookings BookingRepository,
	notifications NotificationRepository,
	drivers DriverQueryRepository,
	selector *DriverSelector,
	dispatcher *BroadcastDispatcher,
	transactor *AssignmentTransactor,
	timeouts *TimeoutManager,
	metrics *MetricsAggregator,
	admin *AdminNotifier,
	messenger Messenger,
	events EventPublisher,
	clock Clock,
	log logger.Logger,
) *Coordinator {
	return &Coordinator{
		bookings:      bookings,
		notifications: notifications,
		drivers:       drivers,
		selector:      selector,
		dispatcher:    dispatcher,
		transactor:    transactor,
		timeouts:      timeouts,
		metrics:       metrics,
		admin:         admin,
		messenger:     messenger,
		events:        events,
		clock:         clock,
		log:           log,
	}
}

func withDefaults(opts models.MatchingOptions) models.MatchingOptions {
	if opts.PerDriverTimeoutSeconds <= 0 {
		opts.PerDriverTimeoutSeconds = int(defaultPerDriverTimeout.Seconds())
	}
	if opts.PerBookingTimeoutSeconds <= 0 {
		opts.PerBookingTimeoutSeconds = int(defaultPerBookingTimeout.Seconds())
	}
	if opts.PriorityMode == "" {
		opts.PriorityMode = types.PriorityRecentActivity
	}
	return opts
}

// StartMatching loads booking, selects eligible drivers, broadcasts an
// offer, arms both timer tiers, and notifies the customer the search has
// begun. A booking with no eligible drivers resolves immediately as a
// no-driver timeout: the metric is written TIMEOUT and Admin is alerted.
func (c *Coordinator) StartMatching(ctx context.Context, bookingID uuid.UUID, opts models.MatchingOptions) (*models.StartMatchingResult, error) {
	ctx = wrap.WithAction(wrap.WithBookingID(ctx, bookingID.String()), types.ActionStartMatching)
	opts = withDefaults(opts)

	booking, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if booking.Status != types.BookingPending {
		return nil, types.ErrBookingNotPending
	}

	drivers, err := c.selector.Select(ctx, *booking, opts)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metricID := bookingID
	if len(drivers) == 0 {
		now := c.clock.Now()
		if err := c.metrics.StartAttempt(ctx, bookingID, 0); err != nil {
			return nil, wrap.Error(ctx, err)
		}
		elapsed := int(now.Sub(booking.CreatedAt).Seconds())
		if err := c.metrics.Finish(ctx, bookingID, types.MetricTimeout, nil, &elapsed); err != nil {
			c.log.Error(ctx, "failed to finalize no-driver metric", err)
		}
		c.messenger.Send(ctx, booking.CustomerPhone, "No drivers are available right now. We'll keep looking.")
		c.admin.AlertNoDriverAvailable(ctx, *booking)
		if err := c.events.PublishBookingTimeout(ctx, bookingID, "no_eligible_drivers"); err != nil {
			c.log.Warn(ctx, "failed to publish booking timeout event", "err", err.Error())
		}
		return &models.StartMatchingResult{
			Success:          false,
			DriversNotified:  0,
			Errors:           []string{types.ErrNoEligibleDrivers.Error()},
			MatchingMetricID: metricID,
		}, nil
	}

	if err := c.metrics.StartAttempt(ctx, bookingID, len(drivers)); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	result := c.dispatcher.Broadcast(ctx, *booking, drivers, opts.PerDriverTimeoutSeconds)

	for _, drv := range result.NotifiedDriverIDs {
		driverID := drv
		c.timeouts.ArmDriverTimeout(bookingID, driverID, time.Duration(opts.PerDriverTimeoutSeconds)*time.Second, func() {
			c.onDriverTimeout(contextForTimer(), bookingID, driverID)
		})
	}
	c.timeouts.ArmBookingTimeout(bookingID, time.Duration(opts.PerBookingTimeoutSeconds)*time.Second, func() {
		c.onBookingTimeout(contextForTimer(), bookingID)
	})

	c.messenger.Send(ctx, booking.CustomerPhone, fmt.Sprintf("Searching for a driver: %d nearby drivers notified.", len(result.NotifiedDriverIDs)))

	return &models.StartMatchingResult{
		Success:          true,
		DriversNotified:  len(result.NotifiedDriverIDs),
		DriverIDs:        result.NotifiedDriverIDs,
		Errors:           result.SendErrors,
		MatchingMetricID: metricID,
	}, nil
}

// HandleDriverResponse processes a driver's ACCEPT or REJECT against the
// ledger and, on ACCEPT, attempts the assignment transaction.
func (c *Coordinator) HandleDriverResponse(ctx context.Context, bookingID, driverID uuid.UUID, resp models.DriverResponse) (types.MatchingAction, error) {
	ctx = wrap.WithAction(wrap.WithBookingID(wrap.WithDriverID(ctx, driverID.String()), bookingID.String()), types.ActionHandleDriverResponse)

	record, err := c.notifications.Get(ctx, bookingID, driverID)
	if err != nil {
		return types.ActionBookingCancelled, nil
	}
	if record.Outcome.IsTerminal() {
		return types.ActionAlreadyTaken, nil
	}

	switch resp.Type {
	case types.ResponseAccept:
		return c.handleAccept(ctx, bookingID, driverID)
	case types.ResponseReject:
		return c.handleReject(ctx, bookingID, driverID)
	default:
		return "", fmt.Errorf("unknown response type %q", resp.Type)
	}
}

func (c *Coordinator) handleAccept(ctx context.Context, bookingID, driverID uuid.UUID) (types.MatchingAction, error) {
	now := c.clock.Now()
	rows, err := c.notifications.SetOutcome(ctx, bookingID, driverID, types.NotificationAccepted, now)
	if err != nil {
		return "", wrap.Error(ctx, err)
	}
	if rows == 0 {
		return types.ActionAlreadyTaken, nil
	}
	if err := c.metrics.RecordResponse(ctx, bookingID); err != nil {
		c.log.Error(ctx, "failed to record response", err)
	}
	c.timeouts.CancelDriverTimeout(bookingID, driverID)

	booking, err := c.transactor.Assign(ctx, bookingID, driverID)
	if err != nil {
		if err == ErrRaceLost {
			return types.ActionAlreadyTaken, nil
		}
		return "", wrap.Error(ctx, err)
	}

	c.timeouts.CancelBookingTimeout(bookingID)

	superseded, err := c.notifications.SetOutcomeForPending(ctx, bookingID, types.NotificationSuperseded, now)
	if err != nil {
		c.log.Error(ctx, "failed to mark superseded notifications", err)
	}
	for _, other := range superseded {
		c.timeouts.CancelDriverTimeout(bookingID, other)
	}
	c.notifySuperseded(ctx, bookingID, superseded)

	c.messenger.Send(ctx, booking.CustomerPhone, fmt.Sprintf("Driver assigned to your booking %s.", bookingID))

	elapsed := int(c.clock.Now().Sub(booking.CreatedAt).Seconds())
	if err := c.events.PublishBookingAssigned(ctx, bookingID, driverID, elapsed); err != nil {
		c.log.Warn(ctx, "failed to publish booking assigned event", "err", err.Error())
	}

	return types.ActionAssigned, nil
}

// notifySuperseded sends the "offer went to someone else" notice to every
// driver whose record was just moved to SUPERSEDED. A failed phone lookup
// or send is logged and skipped; it never affects the already-committed
// assignment.
func (c *Coordinator) notifySuperseded(ctx context.Context, bookingID uuid.UUID, driverIDs []uuid.UUID) {
	for _, driverID := range driverIDs {
		drv, err := c.drivers.GetByID(ctx, driverID)
		if err != nil {
			c.log.Warn(ctx, "failed to resolve superseded driver phone", "driver_id", driverID.String(), "err", err.Error())
			continue
		}
		c.dispatcher.SendSuperseded(ctx, drv.Phone, bookingID)
	}
}

func (c *Coordinator) handleReject(ctx context.Context, bookingID, driverID uuid.UUID) (types.MatchingAction, error) {
	rows, err := c.notifications.SetOutcome(ctx, bookingID, driverID, types.NotificationRejected, c.clock.Now())
	if err != nil {
		return "", wrap.Error(ctx, err)
	}
	if rows == 0 {
		return types.ActionAlreadyTaken, nil
	}
	if err := c.metrics.RecordResponse(ctx, bookingID); err != nil {
		c.log.Error(ctx, "failed to record response", err)
	}
	c.timeouts.CancelDriverTimeout(bookingID, driverID)
	return types.ActionRejected, nil
}

// CancelMatching terminates every outstanding offer and timer for a
// booking. Idempotent: cancelling an already-cancelled or already-resolved
// booking is a no-op.
func (c *Coordinator) CancelMatching(ctx context.Context, bookingID uuid.UUID, reason string) error {
	ctx = wrap.WithAction(wrap.WithBookingID(ctx, bookingID.String()), types.ActionCancelMatching)

	if err := c.bookings.SetCancelled(ctx, bookingID, reason); err != nil {
		return wrap.Error(ctx, err)
	}
	now := c.clock.Now()
	if _, err := c.notifications.SetOutcomeForPending(ctx, bookingID, types.NotificationTimeout, now); err != nil {
		c.log.Error(ctx, "failed to mark notifications on cancel", err)
	}
	elapsed := 0
	if err := c.metrics.Finish(ctx, bookingID, types.MetricCancelled, nil, &elapsed); err != nil {
		c.log.Error(ctx, "failed to finalize cancelled metric", err)
	}
	c.timeouts.ClearAllTimeouts(bookingID)
	return nil
}

// onDriverTimeout fires when a per-driver timer expires: the record is
// marked TIMEOUT only if it's still PENDING, and if no PENDING records
// remain for the booking, the per-booking timeout runs early.
func (c *Coordinator) onDriverTimeout(ctx context.Context, bookingID, driverID uuid.UUID) {
	ctx = wrap.WithAction(wrap.WithBookingID(ctx, bookingID.String()), types.ActionPerDriverTimeout)

	rows, err := c.notifications.SetOutcome(ctx, bookingID, driverID, types.NotificationTimeout, c.clock.Now())
	if err != nil {
		c.log.Error(ctx, "failed to mark notification timeout", err)
		return
	}
	if rows == 0 {
		return
	}
	if err := c.metrics.RecordResponse(ctx, bookingID); err != nil {
		c.log.Error(ctx, "failed to record timeout response", err)
	}

	pending, err := c.notifications.ListPending(ctx, bookingID)
	if err != nil {
		c.log.Error(ctx, "failed to list pending notifications", err)
		return
	}
	if len(pending) == 0 {
		c.onBookingTimeout(ctx, bookingID)
	}
}

// onBookingTimeout fires when the per-booking timer expires, or early when
// the last outstanding driver response times out. It only acts if the
// booking is still PENDING: an ACCEPT that raced in just ahead of this
// callback must win.
func (c *Coordinator) onBookingTimeout(ctx context.Context, bookingID uuid.UUID) {
	ctx = wrap.WithAction(wrap.WithBookingID(ctx, bookingID.String()), types.ActionPerBookingTimeout)

	booking, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		c.log.Error(ctx, "failed to load booking for timeout", err)
		return
	}
	if booking.Status != types.BookingPending {
		return
	}

	now := c.clock.Now()
	if _, err := c.notifications.SetOutcomeForPending(ctx, bookingID, types.NotificationTimeout, now); err != nil {
		c.log.Error(ctx, "failed to mark pending notifications timed out", err)
	}
	elapsed := int(now.Sub(booking.CreatedAt).Seconds())
	if err := c.metrics.Finish(ctx, bookingID, types.MetricTimeout, nil, &elapsed); err != nil {
		c.log.Error(ctx, "failed to finalize timeout metric", err)
	}
	c.timeouts.ClearAllTimeouts(bookingID)
	c.messenger.Send(ctx, booking.CustomerPhone, "No driver accepted your booking in time. We'll keep trying.")
	c.admin.AlertNoDriverAvailable(ctx, *booking)
	if err := c.events.PublishBookingTimeout(ctx, bookingID, "no_driver_accepted"); err != nil {
		c.log.Warn(ctx, "failed to publish booking timeout event", "err", err.Error())
	}
}

// Recover reloads every still-PENDING booking on process startup and
// re-arms its timers: per-driver deadlines are recomputed from each
// record's sentAt, firing immediately if already elapsed; a booking whose
// per-booking deadline elapsed during downtime is timed out immediately.
func (c *Coordinator) Recover(ctx context.Context, perDriverTimeout, perBookingTimeout time.Duration) error {
	ctx = wrap.WithAction(ctx, types.ActionMatchingRecover)

	pending, err := c.bookings.ListPending(ctx)
	if err != nil {
		return wrap.Error(ctx, err)
	}

	now := c.clock.Now()
	for _, booking := range pending {
		bookingID := booking.ID

		if now.Sub(booking.CreatedAt) >= perBookingTimeout {
			c.onBookingTimeout(ctx, bookingID)
			continue
		}
		remaining := perBookingTimeout - now.Sub(booking.CreatedAt)
		c.timeouts.ArmBookingTimeout(bookingID, remaining, func() {
			c.onBookingTimeout(contextForTimer(), bookingID)
		})

		records, err := c.notifications.ListPending(ctx, bookingID)
		if err != nil {
			c.log.Error(ctx, "failed to list pending notifications during recovery", err, "booking_id", bookingID.String())
			continue
		}
		for _, rec := range records {
			driverID := rec.DriverID
			elapsed := now.Sub(rec.SentAt)
			if elapsed >= perDriverTimeout {
				c.onDriverTimeout(ctx, bookingID, driverID)
				continue
			}
			remaining := perDriverTimeout - elapsed
			c.timeouts.ArmDriverTimeout(bookingID, driverID, remaining, func() {
				c.onDriverTimeout(contextForTimer(), bookingID, driverID)
			})
		}
	}
	return nil
}

// Snapshot assembles the GET matching/status/:bookingId view.
func (c *Coordinator) Snapshot(ctx context.Context, bookingID uuid.UUID) (*models.BookingSnapshot, error) {
	booking, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	snap := &models.BookingSnapshot{Booking: *booking}

	if metric, err := c.metrics.Get(ctx, bookingID); err == nil {
		snap.Metric = metric
	}

	if booking.AssignedDriverID != nil {
		if drv, err := c.drivers.GetByID(ctx, *booking.AssignedDriverID); err == nil {
			snap.AssignedDriver = drv
		}
	}
	return snap, nil
}
