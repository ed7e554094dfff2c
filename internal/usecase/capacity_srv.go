package usecase

import (
	"context"
	"sync"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CapacityService is the single owner of Trip.spots_available. Every
// mutation goes through Reserve or Release, serialized per trip.
type CapacityService interface {
	// Reserve atomically takes n seats from the trip or fails with
	// InsufficientCapacityError. No partial reservation.
	Reserve(ctx context.Context, tripID uuid.UUID, seats int) (*entity.Trip, error)

	// Release returns n seats to the pool, capped at max_capacity,
	// and recomputes the derived status.
	Release(ctx context.Context, tripID uuid.UUID, seats int) (*entity.Trip, error)
}

type capacityService struct {
	repo             repository.TripRepository
	promoteThreshold float64
	log              *zap.Logger

	// one mutex per trip; the critical section is read-check-write only,
	// no external I/O beyond the trip row itself
	tripLocks sync.Map
}

func NewCapacityService(repo repository.TripRepository, config *utils.Config, log *zap.Logger) CapacityService {
	return &capacityService{
		repo:             repo,
		promoteThreshold: config.Booking.PromoteThreshold,
		log:              log.With(zap.String("service", "capacity")),
	}
}

func (s *capacityService) lockFor(tripID uuid.UUID) *sync.Mutex {
	mu, _ := s.tripLocks.LoadOrStore(tripID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *capacityService) Reserve(ctx context.Context, tripID uuid.UUID, seats int) (*entity.Trip, error) {
	mu := s.lockFor(tripID)
	mu.Lock()
	defer mu.Unlock()

	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.Status == entity.TripStatusCancelled {
		return nil, ErrTripNotBookable
	}

	if trip.SpotsAvailable < seats {
		return nil, &InsufficientCapacityError{SeatsLeft: trip.SpotsAvailable}
	}

	newSpots := trip.SpotsAvailable - seats
	newStatus := entity.TripStatusFor(newSpots, trip.MaxCapacity, s.promoteThreshold)

	// The repo update is itself guarded on spots_available >= seats, so a
	// writer bypassing this process cannot push the counter negative.
	ok, err := s.repo.ReserveSeats(ctx, tripID, seats, newStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("Seat reservation lost a write race",
			zap.String("trip_id", tripID.String()),
			zap.Int("seats", seats),
		)
		return nil, ErrConcurrencyConflict
	}

	trip.SpotsAvailable = newSpots
	trip.Status = newStatus

	s.log.Info("Seats reserved",
		zap.String("trip_id", tripID.String()),
		zap.Int("seats", seats),
		zap.Int("spots_available", newSpots),
		zap.String("status", string(newStatus)),
	)

	return trip, nil
}

func (s *capacityService) Release(ctx context.Context, tripID uuid.UUID, seats int) (*entity.Trip, error) {
	mu := s.lockFor(tripID)
	mu.Lock()
	defer mu.Unlock()

	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	newSpots := trip.SpotsAvailable + seats
	if newSpots > trip.MaxCapacity {
		newSpots = trip.MaxCapacity
	}

	newStatus := trip.Status
	if trip.Status != entity.TripStatusCancelled {
		newStatus = entity.TripStatusFor(newSpots, trip.MaxCapacity, s.promoteThreshold)
	}

	if err := s.repo.UpdateSeatState(ctx, tripID, newSpots, newStatus); err != nil {
		return nil, err
	}

	trip.SpotsAvailable = newSpots
	trip.Status = newStatus

	s.log.Info("Seats released",
		zap.String("trip_id", tripID.String()),
		zap.Int("seats", seats),
		zap.Int("spots_available", newSpots),
		zap.String("status", string(newStatus)),
	)

	return trip, nil
}
