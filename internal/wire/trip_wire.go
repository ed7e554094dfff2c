package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTrip(
	r chi.Router,
	tripHandler *adaptor.TripHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/trips - Browse open trips (public)
	r.Get("/api/trips", tripHandler.GetTrips)

	// GET /api/trips/{id} - Trip details including live availability (public)
	r.Get("/api/trips/{id}", tripHandler.GetTripByID)
}
