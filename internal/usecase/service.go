package usecase

import (
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Trip     TripService
	Capacity CapacityService
	SeatLock SeatLockService
	Booking  BookingService
	Campaign CampaignService
}

func NewService(repo *repository.Repository, messenger Messenger, config *utils.Config, log *zap.Logger) *Service {
	capacity := NewCapacityService(repo.Trip, config, log)
	seatLock := NewSeatLockService(repo.SeatLock, capacity, config, log)

	return &Service{
		Trip:     NewTripService(repo.Trip, log),
		Capacity: capacity,
		SeatLock: seatLock,
		Booking:  NewBookingService(repo, capacity, seatLock, config, log),
		Campaign: NewCampaignService(repo, messenger, config, log),
	}
}
