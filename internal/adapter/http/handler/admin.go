package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
)

// AdminService is the admin-dashboard dependency this handler will call
// once its overview endpoints are implemented. Administrative reporting is
// not part of driver matching, so it stays a placeholder here.
type AdminService interface{}

type Admin struct {
	svc AdminService
	l   logger.Logger
}

func NewAdmin(svc AdminService, l logger.Logger) *Admin {
	return &Admin{
		svc: svc,
		l:   l,
	}
}

func (h *Admin) GetOverview(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "admin service not implemented in this deployment")
}

func (h *Admin) GetActiveRides(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotImplemented, "admin service not implemented in this deployment")
}
