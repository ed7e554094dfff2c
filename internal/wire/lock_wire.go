package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireLock(
	r chi.Router,
	lockHandler *adaptor.LockHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/locks - Hold seats on a trip before checkout
		r.Post("/api/locks", lockHandler.AcquireLock)

		// PUT /api/locks/{id}/refresh - Extend an active hold
		r.Put("/api/locks/{id}/refresh", lockHandler.RefreshLock)

		// DELETE /api/locks/{id} - Give the held seats back
		r.Delete("/api/locks/{id}", lockHandler.ReleaseLock)
	})
}
