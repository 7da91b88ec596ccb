package models

import (
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
)

// Booking is the ride request the matching core assigns to a driver.
// AssignedDriverID is non-nil iff Status is Accepted or Completed; only the
// Assignment Transactor may set it, and only from Pending.
type Booking struct {
	ID               uuid.UUID
	Status           types.BookingStatus
	AssignedDriverID *uuid.UUID
	Version          int32
	CreatedAt        time.Time

	CustomerID    uuid.UUID
	CustomerPhone string

	PickupAddress string
	PickupLat     float64
	PickupLon     float64
	DropAddress   string
	DropLat       float64
	DropLon       float64

	ScheduledAt        *time.Time
	PassengerCount     int
	EstimatedFareMinor int64
}

// MatchingDriver is the Driver Selector's read model: everything needed to
// judge eligibility, order candidates, and address an offer, joined from
// the drivers/locations tables. It is deliberately distinct from the
// driver-directory Driver model in driver.go, mirroring that file's own
// DriverWithDistance read-model pattern.
type MatchingDriver struct {
	ID     uuid.UUID
	Phone  string
	Name   string
	Rating float64

	IsAvailable bool
	IsOnline    bool
	IsVerified  bool
	IsActive    bool

	Zones []string

	Lat *float64
	Lon *float64

	LastSeenAt time.Time

	Vehicle Vehicle
}

// Eligible reports whether this driver can receive ride offers.
func (d MatchingDriver) Eligible() bool {
	return d.IsAvailable && d.IsOnline && d.IsVerified && d.IsActive
}

// HasCoordinates reports whether this driver's location is known.
func (d MatchingDriver) HasCoordinates() bool {
	return d.Lat != nil && d.Lon != nil
}

// NotificationRecord is the per-(booking, driver) offer and its outcome.
type NotificationRecord struct {
	BookingID   uuid.UUID
	DriverID    uuid.UUID
	SentAt      time.Time
	RespondedAt *time.Time
	Outcome     types.NotificationOutcome
	Method      string
}

// MatchingMetric is the one-row-per-attempt aggregate for a matching run.
type MatchingMetric struct {
	BookingID           uuid.UUID
	TotalNotified       int
	TotalResponded      int
	AcceptedAt          *time.Time
	TimeToMatchSeconds  *int
	FinalStatus         types.MetricStatus
}

// MatchingOptions are the recognised StartMatching options.
type MatchingOptions struct {
	PerDriverTimeoutSeconds  int
	PerBookingTimeoutSeconds int
	MaxDistanceKm            *float64
	PriorityMode             types.PriorityMode
	ExcludeDriverIDs         []uuid.UUID
}

// DriverResponse is a driver's reply to an offer.
type DriverResponse struct {
	Type         types.DriverResponseType
	Timestamp    time.Time
	ResponseTime time.Duration
}

// StartMatchingResult is StartMatching's return value.
type StartMatchingResult struct {
	Success          bool
	DriversNotified  int
	DriverIDs        []uuid.UUID
	Errors           []string
	MatchingMetricID uuid.UUID
}

// BookingSnapshot is the GET matching/status/:bookingId response: the
// booking plus, once assigned, the winning driver's public details and the
// attempt's metric row.
type BookingSnapshot struct {
	Booking        Booking
	AssignedDriver *MatchingDriver
	Metric         *MatchingMetric
}
