package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LockHandler struct {
	service usecase.SeatLockService
	log     *zap.Logger
}

func NewLockHandler(service usecase.SeatLockService, log *zap.Logger) *LockHandler {
	return &LockHandler{
		service: service,
		log:     log.With(zap.String("handler", "lock")),
	}
}

// AcquireLock handles POST /api/locks (protected)
func (h *LockHandler) AcquireLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.AcquireLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	tripID, err := utils.ParseUUID(req.TripID)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid trip ID", nil)
		return
	}

	lock, err := h.service.Acquire(r.Context(), tripID, userID, req.Seats)
	if err != nil {
		h.handleServiceError(w, err, "acquire lock")
		return
	}

	resp := response.LockToResponse(lock)
	utils.ResponseCreated(w, "success", resp)
}

// RefreshLock handles PUT /api/locks/{id}/refresh (protected)
func (h *LockHandler) RefreshLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	lockID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid lock ID", nil)
		return
	}

	lock, err := h.service.Refresh(r.Context(), lockID, userID)
	if err != nil {
		h.handleServiceError(w, err, "refresh lock")
		return
	}

	resp := response.LockToResponse(lock)
	utils.ResponseSuccess(w, "success", resp)
}

// ReleaseLock handles DELETE /api/locks/{id} (protected)
func (h *LockHandler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	lockID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid lock ID", nil)
		return
	}

	status, err := h.service.Release(r.Context(), lockID, userID)
	if err != nil {
		h.handleServiceError(w, err, "release lock")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]string{"status": string(status)})
}

// handleServiceError handles errors untuk lock operations
func (h *LockHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var insufficient *usecase.InsufficientCapacityError

	switch {
	case errors.Is(err, usecase.ErrTripNotFound), errors.Is(err, usecase.ErrLockNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &insufficient), errors.Is(err, usecase.ErrConcurrencyConflict):
		h.log.Warn(operation+" failed - capacity conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrLockExpired), errors.Is(err, usecase.ErrTripNotBookable):
		h.log.Warn(operation+" failed - invalid state",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrLockNotOwned):
		h.log.Warn(operation+" failed - not owner",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnauthorized(w, err.Error())

	case strings.Contains(err.Error(), "validation failed"):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
