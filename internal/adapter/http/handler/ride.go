package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
)

// RideService is the ride-domain dependency this handler will call once its
// CRUD endpoints are implemented. Ride creation/cancellation does not
// participate in driver matching, so it stays a placeholder here.
type RideService interface{}

type Ride struct {
	l   logger.Logger
	svc RideService
}

func NewRide(l logger.Logger, svc RideService) *Ride {
	return &Ride{
		l:   l,
		svc: svc,
	}
}

func (h *Ride) CreateRide(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "ride service not implemented in this deployment")
}

func (h *Ride) CancelRide(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "ride service not implemented in this deployment")
}

func (h *Ride) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "ride service not implemented in this deployment")
}
