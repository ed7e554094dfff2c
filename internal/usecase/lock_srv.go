package usecase

import (
	"context"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatLockService manages time-limited seat holds. A lock leaves "active"
// exactly once: either released (seats credited back, or consumed by a
// booking) or expired by reconciliation. Both transitions go through the
// repository compare-and-swap, so whichever happens first is final and
// the capacity credit happens exactly once.
type SeatLockService interface {
	Acquire(ctx context.Context, tripID, userID uuid.UUID, seats int) (*entity.SeatLock, error)
	Refresh(ctx context.Context, lockID, userID uuid.UUID) (*entity.SeatLock, error)
	Release(ctx context.Context, lockID, userID uuid.UUID) (entity.LockStatus, error)

	// Consume converts an active, unexpired lock owned by userID for
	// tripID into booked seats: the lock ends in "released" but capacity
	// is NOT credited back. Used only by the booking coordinator.
	Consume(ctx context.Context, lockID, userID, tripID uuid.UUID) (*entity.SeatLock, error)

	// ReconcileExpired expires overdue active locks and credits their
	// seats back. Safe to call at any cadence.
	ReconcileExpired(ctx context.Context) (int, error)
}

type seatLockService struct {
	locks    repository.SeatLockRepository
	capacity CapacityService
	ttl      time.Duration
	log      *zap.Logger
	clock    func() time.Time
}

func NewSeatLockService(locks repository.SeatLockRepository, capacity CapacityService, config *utils.Config, log *zap.Logger) SeatLockService {
	return &seatLockService{
		locks:    locks,
		capacity: capacity,
		ttl:      time.Duration(config.Booking.LockTTLMinutes) * time.Minute,
		log:      log.With(zap.String("service", "seat_lock")),
		clock:    time.Now,
	}
}

func (s *seatLockService) Acquire(ctx context.Context, tripID, userID uuid.UUID, seats int) (*entity.SeatLock, error) {
	if _, err := s.capacity.Reserve(ctx, tripID, seats); err != nil {
		return nil, err
	}

	now := s.clock()
	lock := &entity.SeatLock{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		TripID:    tripID,
		UserID:    userID,
		Seats:     seats,
		Status:    entity.LockStatusActive,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.locks.Create(ctx, lock); err != nil {
		// Capacity was already taken; give the seats back so no seat is
		// decremented without a lock record behind it.
		if _, relErr := s.capacity.Release(ctx, tripID, seats); relErr != nil {
			s.log.Error("Failed to roll back reservation after lock create failure",
				zap.Error(relErr),
				zap.String("trip_id", tripID.String()),
				zap.Int("seats", seats),
			)
		}
		return nil, err
	}

	s.log.Info("Seat lock acquired",
		zap.String("lock_id", lock.ID.String()),
		zap.String("trip_id", tripID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("seats", seats),
		zap.Time("expires_at", lock.ExpiresAt),
	)

	return lock, nil
}

func (s *seatLockService) Refresh(ctx context.Context, lockID, userID uuid.UUID) (*entity.SeatLock, error) {
	lock, err := s.loadOwned(ctx, lockID, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if lock.Status != entity.LockStatusActive {
		return nil, ErrLockExpired
	}
	if lock.IsExpired(now) {
		// Lazy reconciliation: the sweep has not caught this one yet.
		s.expireLock(ctx, lock)
		return nil, ErrLockExpired
	}

	newExpiry := now.Add(s.ttl)
	ok, err := s.locks.ExtendExpiry(ctx, lockID, newExpiry, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against expiry or release.
		return nil, ErrLockExpired
	}

	lock.ExpiresAt = newExpiry

	s.log.Info("Seat lock refreshed",
		zap.String("lock_id", lockID.String()),
		zap.Time("expires_at", newExpiry),
	)

	return lock, nil
}

func (s *seatLockService) Release(ctx context.Context, lockID, userID uuid.UUID) (entity.LockStatus, error) {
	lock, err := s.loadOwned(ctx, lockID, userID)
	if err != nil {
		return "", err
	}

	ok, err := s.locks.TransitionStatus(ctx, lockID, entity.LockStatusActive, entity.LockStatusReleased)
	if err != nil {
		return "", err
	}
	if !ok {
		// Already expired or released; seats were credited by whichever
		// transition won. Idempotent no-op.
		current, err := s.locks.FindByID(ctx, lockID)
		if err != nil {
			return "", err
		}
		if current == nil {
			return "", ErrLockNotFound
		}
		return current.Status, nil
	}

	if _, err := s.capacity.Release(ctx, lock.TripID, lock.Seats); err != nil {
		s.log.Error("Failed to credit capacity after lock release",
			zap.Error(err),
			zap.String("lock_id", lockID.String()),
			zap.String("trip_id", lock.TripID.String()),
		)
		return "", err
	}

	s.log.Info("Seat lock released",
		zap.String("lock_id", lockID.String()),
		zap.String("trip_id", lock.TripID.String()),
		zap.Int("seats", lock.Seats),
	)

	return entity.LockStatusReleased, nil
}

func (s *seatLockService) Consume(ctx context.Context, lockID, userID, tripID uuid.UUID) (*entity.SeatLock, error) {
	lock, err := s.loadOwned(ctx, lockID, userID)
	if err != nil {
		return nil, err
	}
	if lock.TripID != tripID {
		return nil, ErrLockTripMismatch
	}

	// Expiry is re-checked here, not trusted from the caller's earlier
	// read, so a stale lock can never produce a booking.
	now := s.clock()
	if lock.Status != entity.LockStatusActive {
		return nil, ErrLockExpired
	}
	if lock.IsExpired(now) {
		s.expireLock(ctx, lock)
		return nil, ErrLockExpired
	}

	ok, err := s.locks.TransitionStatus(ctx, lockID, entity.LockStatusActive, entity.LockStatusReleased)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockExpired
	}

	// No capacity release: the held seats convert into the booking.
	s.log.Info("Seat lock consumed by booking",
		zap.String("lock_id", lockID.String()),
		zap.String("trip_id", tripID.String()),
		zap.Int("seats", lock.Seats),
	)

	return lock, nil
}

func (s *seatLockService) ReconcileExpired(ctx context.Context) (int, error) {
	now := s.clock()
	expired, err := s.locks.FindExpiredActive(ctx, now, reconcileBatchSize)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, lock := range expired {
		if s.expireLock(ctx, lock) {
			reclaimed++
		}
	}

	if reclaimed > 0 {
		s.log.Info("Expired seat locks reconciled", zap.Int("count", reclaimed))
	}

	return reclaimed, nil
}

// expireLock performs the guarded active→expired transition and credits
// capacity only when this call won the transition. Returns true when the
// seats were credited here.
func (s *seatLockService) expireLock(ctx context.Context, lock *entity.SeatLock) bool {
	ok, err := s.locks.TransitionStatus(ctx, lock.ID, entity.LockStatusActive, entity.LockStatusExpired)
	if err != nil {
		s.log.Error("Failed to expire seat lock",
			zap.Error(err),
			zap.String("lock_id", lock.ID.String()),
		)
		return false
	}
	if !ok {
		return false
	}

	if _, err := s.capacity.Release(ctx, lock.TripID, lock.Seats); err != nil {
		s.log.Error("Failed to credit capacity for expired lock",
			zap.Error(err),
			zap.String("lock_id", lock.ID.String()),
			zap.String("trip_id", lock.TripID.String()),
		)
		return false
	}

	s.log.Info("Seat lock expired",
		zap.String("lock_id", lock.ID.String()),
		zap.String("trip_id", lock.TripID.String()),
		zap.Int("seats", lock.Seats),
	)

	return true
}

func (s *seatLockService) loadOwned(ctx context.Context, lockID, userID uuid.UUID) (*entity.SeatLock, error) {
	lock, err := s.locks.FindByID(ctx, lockID)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, ErrLockNotFound
	}
	if lock.UserID != userID {
		return nil, ErrLockNotOwned
	}
	return lock, nil
}

const reconcileBatchSize = 500
