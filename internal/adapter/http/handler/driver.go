package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
)

// DriverService is the driver-directory/location dependency this handler
// will call once its CRUD and location endpoints are implemented. Those
// endpoints don't participate in driver matching, so it stays a placeholder.
type DriverService interface{}

type Driver struct {
	svc DriverService
	l   logger.Logger
}

func NewDriver(svc DriverService, l logger.Logger) *Driver {
	return &Driver{
		svc: svc,
		l:   l,
	}
}

func (h *Driver) Register(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) GoOnline(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) GoOffline(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) StartRide(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) CompleteRide(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}

func (h *Driver) HandleWS(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "driver service not implemented in this deployment")
}
