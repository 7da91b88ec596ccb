package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/ride-hail-system/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/models"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
	"github.com/Temutjin2k/ride-hail-system/pkg/validator"
)

// MatchingService is the coordinator surface the HTTP layer drives.
type MatchingService interface {
	StartMatching(ctx context.Context, bookingID uuid.UUID, opts models.MatchingOptions) (*models.StartMatchingResult, error)
	HandleDriverResponse(ctx context.Context, bookingID, driverID uuid.UUID, resp models.DriverResponse) (types.MatchingAction, error)
	CancelMatching(ctx context.Context, bookingID uuid.UUID, reason string) error
	Snapshot(ctx context.Context, bookingID uuid.UUID) (*models.BookingSnapshot, error)
}

type Matching struct {
	svc MatchingService
	l   logger.Logger
}

func NewMatching(svc MatchingService, l logger.Logger) *Matching {
	return &Matching{
		svc: svc,
		l:   l,
	}
}

// StartMatching godoc
// @Summary      Start matching a booking
// @Description  Selects eligible drivers and broadcasts offers for a pending booking
// @Tags         Matching
// @Accept       json
// @Produce      json
// @Router       /matching/start [post]
func (h *Matching) StartMatching(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionStartMatching)

	req := &dto.StartMatchingRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Error(ctx, "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	bookingID, _ := uuid.Parse(req.BookingID)

	result, err := h.svc.StartMatching(ctx, bookingID, req.ToOptions())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start matching", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewStartMatchingResponse(result), nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// HandleDriverResponse godoc
// @Summary      Record a driver's response to an offer
// @Tags         Matching
// @Accept       json
// @Produce      json
// @Router       /matching/response [post]
func (h *Matching) HandleDriverResponse(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionHandleDriverResponse)

	req := &dto.DriverResponseRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Error(ctx, "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	bookingID, _ := uuid.Parse(req.BookingID)
	driverID, _ := uuid.Parse(req.DriverID)

	action, err := h.svc.HandleDriverResponse(ctx, bookingID, driverID, models.DriverResponse{
		Type: types.DriverResponseType(req.Response),
	})
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle driver response", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.DriverResponseResponse{Action: action}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// CancelMatching godoc
// @Summary      Cancel an in-flight matching attempt
// @Tags         Matching
// @Accept       json
// @Produce      json
// @Router       /matching/cancel [post]
func (h *Matching) CancelMatching(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCancelMatching)

	req := &dto.CancelMatchingRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Error(ctx, "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	bookingID, _ := uuid.Parse(req.BookingID)

	if err := h.svc.CancelMatching(ctx, bookingID, req.Reason); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel matching", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"status": "cancelled"}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// GetStatus godoc
// @Summary      Get a booking's matching status snapshot
// @Tags         Matching
// @Produce      json
// @Router       /matching/status/{booking_id} [get]
func (h *Matching) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "matching_status")

	bookingID, err := uuid.Parse(r.PathValue("booking_id"))
	if err != nil {
		badRequestResponse(w, "booking_id must be a valid UUID")
		return
	}

	snap, err := h.svc.Snapshot(ctx, bookingID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load matching snapshot", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewBookingSnapshotResponse(snap), nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}
