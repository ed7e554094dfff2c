package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatLockRepository interface {
	Create(ctx context.Context, lock *entity.SeatLock) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatLock, error)

	// TransitionStatus is the compare-and-swap used for terminal lock
	// transitions. It returns true only when this call moved the lock
	// out of the `from` status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.LockStatus) (bool, error)

	// ExtendExpiry pushes expires_at forward only while the lock is
	// still active and unexpired.
	ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (bool, error)

	FindExpiredActive(ctx context.Context, now time.Time, limit int) ([]*entity.SeatLock, error)
}

type seatLockRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatLockRepository(db database.PgxIface, log *zap.Logger) SeatLockRepository {
	return &seatLockRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_lock")),
	}
}

func (r *seatLockRepository) Create(ctx context.Context, lock *entity.SeatLock) error {
	query := `
		INSERT INTO seat_locks (id, trip_id, user_id, seats, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		lock.ID,
		lock.TripID,
		lock.UserID,
		lock.Seats,
		lock.Status,
		lock.ExpiresAt,
		lock.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create seat lock",
			zap.Error(err),
			zap.String("trip_id", lock.TripID.String()),
			zap.String("user_id", lock.UserID.String()),
			zap.Int("seats", lock.Seats),
		)
		return fmt.Errorf("create seat lock for trip %s: %w", lock.TripID.String(), err)
	}

	return nil
}

func (r *seatLockRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatLock, error) {
	query := `
		SELECT id, trip_id, user_id, seats, status, expires_at, created_at
		FROM seat_locks
		WHERE id = $1
	`

	var lock entity.SeatLock
	err := r.db.QueryRow(ctx, query, id).Scan(
		&lock.ID,
		&lock.TripID,
		&lock.UserID,
		&lock.Seats,
		&lock.Status,
		&lock.ExpiresAt,
		&lock.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat lock by ID",
			zap.Error(err),
			zap.String("lock_id", id.String()),
		)
		return nil, fmt.Errorf("find seat lock by ID %s: %w", id.String(), err)
	}

	return &lock, nil
}

func (r *seatLockRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.LockStatus) (bool, error) {
	query := `UPDATE seat_locks SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to transition seat lock status",
			zap.Error(err),
			zap.String("lock_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("transition seat lock %s from %s to %s: %w", id.String(), string(from), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *seatLockRepository) ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (bool, error) {
	query := `UPDATE seat_locks SET expires_at = $2 WHERE id = $1 AND status = 'active' AND expires_at > $3`

	result, err := r.db.Exec(ctx, query, id, expiresAt, now)
	if err != nil {
		r.log.Error("Failed to extend seat lock expiry",
			zap.Error(err),
			zap.String("lock_id", id.String()),
		)
		return false, fmt.Errorf("extend seat lock %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *seatLockRepository) FindExpiredActive(ctx context.Context, now time.Time, limit int) ([]*entity.SeatLock, error) {
	query := `
		SELECT id, trip_id, user_id, seats, status, expires_at, created_at
		FROM seat_locks
		WHERE status = 'active' AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired seat locks", zap.Error(err))
		return nil, fmt.Errorf("find expired seat locks: %w", err)
	}
	defer rows.Close()

	var locks []*entity.SeatLock
	for rows.Next() {
		var lock entity.SeatLock
		err := rows.Scan(
			&lock.ID,
			&lock.TripID,
			&lock.UserID,
			&lock.Seats,
			&lock.Status,
			&lock.ExpiresAt,
			&lock.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan seat lock row", zap.Error(err))
			return nil, fmt.Errorf("scan seat lock row: %w", err)
		}
		locks = append(locks, &lock)
	}

	return locks, nil
}
