package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/booking - Create new booking (with or without a seat lock)
		r.Post("/api/booking", bookingHandler.CreateBooking)

		// POST /api/pay - Confirm the advance payment for a booking
		r.Post("/api/pay", bookingHandler.ConfirmPayment)

		// GET /api/user/bookings - View booking history (user's own bookings)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// GET /api/admin/bookings/{id} - View any booking details
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/admin/bookings/{id}/cancel - Cancel any booking
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
