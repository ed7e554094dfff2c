package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TripHandler struct {
	service usecase.TripService
	log     *zap.Logger
}

func NewTripHandler(service usecase.TripService, log *zap.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log.With(zap.String("handler", "trip")),
	}
}

// GetTrips handles GET /api/trips (public)
func (h *TripHandler) GetTrips(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{
		Page:    1,
		PerPage: 10,
	}

	query := r.URL.Query()
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 10)

	trips, err := h.service.GetTrips(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "get trips")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// GetTripByID handles GET /api/trips/{id} (public)
func (h *TripHandler) GetTripByID(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		utils.ResponseBadRequest(w, "Trip ID is required", nil)
		return
	}

	trip, err := h.service.GetTripByID(r.Context(), tripID)
	if err != nil {
		h.handleServiceError(w, err, "get trip by ID")
		return
	}

	utils.ResponseSuccess(w, "success", trip)
}

// handleServiceError handles errors untuk trip operations
func (h *TripHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrTripNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"), strings.Contains(errMsg, "invalid"):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
