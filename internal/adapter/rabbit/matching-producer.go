package rabbit

import (
	"context"
	"time"

	"github.com/Temutjin2k/ride-hail-system/pkg/rabbit"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

const matchingTopic = "matching_topic"

// MatchingProducer publishes matching-core lifecycle events for downstream
// consumers (payment/trip-record creation, analytics) that the matching
// core itself does not own.
type MatchingProducer struct {
	client    *rabbit.RabbitMQ
	exchanges map[string]string
}

func NewMatchingProducer(client *rabbit.RabbitMQ) *MatchingProducer {
	return &MatchingProducer{
		client:    client,
		exchanges: map[string]string{matchingTopic: "topic"},
	}
}

type bookingAssignedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	DriverID        uuid.UUID `json:"driver_id"`
	TimeToMatchSecs int       `json:"time_to_match_seconds"`
	AssignedAt      time.Time `json:"assigned_at"`
}

type bookingTimeoutEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reason     string    `json:"reason"`
	TimedOutAt time.Time `json:"timed_out_at"`
}

func (p *MatchingProducer) PublishBookingAssigned(ctx context.Context, bookingID, driverID uuid.UUID, timeToMatchSecs int) error {
	return p.publish(ctx, matchingTopic, "booking.assigned", bookingAssignedEvent{
		BookingID:       bookingID,
		DriverID:        driverID,
		TimeToMatchSecs: timeToMatchSecs,
		AssignedAt:      time.Now().UTC(),
	})
}

func (p *MatchingProducer) PublishBookingTimeout(ctx context.Context, bookingID uuid.UUID, reason string) error {
	return p.publish(ctx, matchingTopic, "booking.timeout", bookingTimeoutEvent{
		BookingID:  bookingID,
		Reason:     reason,
		TimedOutAt: time.Now().UTC(),
	})
}

func (p *MatchingProducer) publish(ctx context.Context, exchange, routingKey string, msg any) error {
	return publishJSON(ctx, p.client, p.exchanges[exchange], exchange, routingKey, msg)
}
