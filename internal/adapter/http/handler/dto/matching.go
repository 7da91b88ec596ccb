package dto

import (
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
	"github.com/Temutjin2k/ride-hail-system/pkg/validator"
)

type StartMatchingRequest struct {
	BookingID                string   `json:"booking_id"`
	PerDriverTimeoutSeconds  int      `json:"per_driver_timeout_seconds"`
	PerBookingTimeoutSeconds int      `json:"per_booking_timeout_seconds"`
	MaxDistanceKm            *float64 `json:"max_distance_km"`
	PriorityMode             string   `json:"priority_mode"`
	ExcludeDriverIDs         []string `json:"exclude_driver_ids"`
}

func (r *StartMatchingRequest) Validate(v *validator.Validator) {
	v.Check(r.BookingID != "", "booking_id", "must be provided")
	if r.BookingID != "" {
		_, err := uuid.Parse(r.BookingID)
		v.Check(err == nil, "booking_id", "must be a valid UUID")
	}

	v.Check(r.PerDriverTimeoutSeconds >= 0, "per_driver_timeout_seconds", "must not be negative")
	v.Check(r.PerBookingTimeoutSeconds >= 0, "per_booking_timeout_seconds", "must not be negative")

	if r.MaxDistanceKm != nil {
		v.Check(*r.MaxDistanceKm > 0, "max_distance_km", "must be greater than zero")
	}

	if r.PriorityMode != "" {
		v.Check(validator.PermittedValue(r.PriorityMode,
			string(types.PriorityRecentActivity), string(types.PriorityDistance)),
			"priority_mode", "must be one of RECENT_ACTIVITY or DISTANCE")
	}

	for _, id := range r.ExcludeDriverIDs {
		if _, err := uuid.Parse(id); err != nil {
			v.AddError("exclude_driver_ids", "must contain only valid UUIDs")
			break
		}
	}
}

func (r *StartMatchingRequest) ToOptions() models.MatchingOptions {
	opts := models.MatchingOptions{
		PerDriverTimeoutSeconds:  r.PerDriverTimeoutSeconds,
		PerBookingTimeoutSeconds: r.PerBookingTimeoutSeconds,
		MaxDistanceKm:            r.MaxDistanceKm,
		PriorityMode:             types.PriorityMode(r.PriorityMode),
	}
	for _, id := range r.ExcludeDriverIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		opts.ExcludeDriverIDs = append(opts.ExcludeDriverIDs, parsed)
	}
	return opts
}

type StartMatchingResponse struct {
	Success          bool        `json:"success"`
	DriversNotified  int         `json:"drivers_notified"`
	DriverIDs        []uuid.UUID `json:"driver_ids"`
	Errors           []string    `json:"errors,omitempty"`
	MatchingMetricID uuid.UUID   `json:"matching_metric_id"`
}

func NewStartMatchingResponse(r *models.StartMatchingResult) StartMatchingResponse {
	return StartMatchingResponse{
		Success:          r.Success,
		DriversNotified:  r.DriversNotified,
		DriverIDs:        r.DriverIDs,
		Errors:           r.Errors,
		MatchingMetricID: r.MatchingMetricID,
	}
}

type DriverResponseRequest struct {
	BookingID string `json:"booking_id"`
	DriverID  string `json:"driver_id"`
	Response  string `json:"response"`
}

func (r *DriverResponseRequest) Validate(v *validator.Validator) {
	v.Check(r.BookingID != "", "booking_id", "must be provided")
	if r.BookingID != "" {
		_, err := uuid.Parse(r.BookingID)
		v.Check(err == nil, "booking_id", "must be a valid UUID")
	}

	v.Check(r.DriverID != "", "driver_id", "must be provided")
	if r.DriverID != "" {
		_, err := uuid.Parse(r.DriverID)
		v.Check(err == nil, "driver_id", "must be a valid UUID")
	}

	v.Check(r.Response != "", "response", "must be provided")
	if r.Response != "" {
		v.Check(validator.PermittedValue(r.Response,
			string(types.ResponseAccept), string(types.ResponseReject)),
			"response", "must be one of ACCEPT or REJECT")
	}
}

type DriverResponseResponse struct {
	Action types.MatchingAction `json:"action"`
}

type CancelMatchingRequest struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

func (r *CancelMatchingRequest) Validate(v *validator.Validator) {
	v.Check(r.BookingID != "", "booking_id", "must be provided")
	if r.BookingID != "" {
		_, err := uuid.Parse(r.BookingID)
		v.Check(err == nil, "booking_id", "must be a valid UUID")
	}
	v.Check(r.Reason != "", "reason", "must be provided")
	v.Check(len(r.Reason) <= 255, "reason", "must not be more than 255 characters long")
}

type BookingSnapshotResponse struct {
	BookingID        uuid.UUID          `json:"booking_id"`
	Status           types.BookingStatus `json:"status"`
	AssignedDriverID *uuid.UUID         `json:"assigned_driver_id,omitempty"`
	Version          int32              `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`

	AssignedDriverName  *string `json:"assigned_driver_name,omitempty"`
	AssignedDriverPhone *string `json:"assigned_driver_phone,omitempty"`

	TotalNotified      *int       `json:"total_notified,omitempty"`
	TotalResponded     *int       `json:"total_responded,omitempty"`
	TimeToMatchSeconds *int       `json:"time_to_match_seconds,omitempty"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty"`
}

func NewBookingSnapshotResponse(s *models.BookingSnapshot) BookingSnapshotResponse {
	resp := BookingSnapshotResponse{
		BookingID:        s.Booking.ID,
		Status:           s.Booking.Status,
		AssignedDriverID: s.Booking.AssignedDriverID,
		Version:          s.Booking.Version,
		CreatedAt:        s.Booking.CreatedAt,
	}

	if s.AssignedDriver != nil {
		resp.AssignedDriverName = &s.AssignedDriver.Name
		resp.AssignedDriverPhone = &s.AssignedDriver.Phone
	}

	if s.Metric != nil {
		resp.TotalNotified = &s.Metric.TotalNotified
		resp.TotalResponded = &s.Metric.TotalResponded
		resp.TimeToMatchSeconds = s.Metric.TimeToMatchSeconds
		resp.AcceptedAt = s.Metric.AcceptedAt
	}

	return resp
}
