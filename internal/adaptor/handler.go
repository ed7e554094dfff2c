package adaptor

import (
	"travel-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Trip     *TripHandler
	Lock     *LockHandler
	Booking  *BookingHandler
	Campaign *CampaignHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Trip:     NewTripHandler(service.Trip, log),
		Lock:     NewLockHandler(service.SeatLock, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Campaign: NewCampaignHandler(service.Campaign, log),
	}
}
