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

type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Trip, error)
	Count(ctx context.Context) (int64, error)

	// Business queries
	FindOpenTrips(ctx context.Context, departureBefore time.Time) ([]*entity.Trip, error)
	ReserveSeats(ctx context.Context, tripID uuid.UUID, seats int, newStatus entity.TripStatus) (bool, error)
	UpdateSeatState(ctx context.Context, tripID uuid.UUID, spotsAvailable int, status entity.TripStatus) error
	UpdateStatus(ctx context.Context, tripID uuid.UUID, status entity.TripStatus) error
}

type tripRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTripRepository(db database.PgxIface, log *zap.Logger) TripRepository {
	return &tripRepository{
		db:  db,
		log: log.With(zap.String("repository", "trip")),
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	query := `
		INSERT INTO trips (id, name, destination, max_capacity, spots_available, price, status, tags, next_departure, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.Name,
		trip.Destination,
		trip.MaxCapacity,
		trip.SpotsAvailable,
		trip.Price,
		trip.Status,
		trip.Tags,
		trip.NextDeparture,
		trip.CreatedAt,
		trip.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create trip",
			zap.Error(err),
			zap.String("trip_id", trip.ID.String()),
		)
		return fmt.Errorf("create trip %s: %w", trip.Name, err)
	}

	return nil
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	query := `
		SELECT id, name, destination, max_capacity, spots_available, price, status, tags, next_departure, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	var trip entity.Trip
	err := r.db.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.Name,
		&trip.Destination,
		&trip.MaxCapacity,
		&trip.SpotsAvailable,
		&trip.Price,
		&trip.Status,
		&trip.Tags,
		&trip.NextDeparture,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find trip by ID",
			zap.Error(err),
			zap.String("trip_id", id.String()),
		)
		return nil, fmt.Errorf("find trip by ID %s: %w", id.String(), err)
	}

	return &trip, nil
}

func (r *tripRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Trip, error) {
	query := `
		SELECT id, name, destination, max_capacity, spots_available, price, status, tags, next_departure, created_at, updated_at
		FROM trips
		ORDER BY next_departure NULLS LAST, created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find trips",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find trips: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

func (r *tripRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM trips`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count trips", zap.Error(err))
		return 0, fmt.Errorf("count trips: %w", err)
	}

	return count, nil
}

func (r *tripRepository) FindOpenTrips(ctx context.Context, departureBefore time.Time) ([]*entity.Trip, error) {
	query := `
		SELECT id, name, destination, max_capacity, spots_available, price, status, tags, next_departure, created_at, updated_at
		FROM trips
		WHERE status IN ('available', 'promoted')
		  AND (next_departure IS NULL OR next_departure <= $1)
		ORDER BY next_departure NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, departureBefore)
	if err != nil {
		r.log.Error("Failed to find open trips",
			zap.Error(err),
			zap.Time("departure_before", departureBefore),
		)
		return nil, fmt.Errorf("find open trips: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// ReserveSeats decrements spots_available only when enough seats remain.
// The guard in the WHERE clause keeps the counter from going negative even
// if callers race past the in-process trip lock.
func (r *tripRepository) ReserveSeats(ctx context.Context, tripID uuid.UUID, seats int, newStatus entity.TripStatus) (bool, error) {
	query := `
		UPDATE trips
		SET spots_available = spots_available - $2, status = $3, updated_at = NOW()
		WHERE id = $1 AND spots_available >= $2
	`

	result, err := r.db.Exec(ctx, query, tripID, seats, newStatus)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.Int("seats", seats),
		)
		return false, fmt.Errorf("reserve %d seats on trip %s: %w", seats, tripID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *tripRepository) UpdateSeatState(ctx context.Context, tripID uuid.UUID, spotsAvailable int, status entity.TripStatus) error {
	query := `UPDATE trips SET spots_available = $2, status = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, tripID, spotsAvailable, status)
	if err != nil {
		r.log.Error("Failed to update trip seat state",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.Int("spots_available", spotsAvailable),
		)
		return fmt.Errorf("update seat state of trip %s: %w", tripID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s not found", tripID.String())
	}

	return nil
}

func (r *tripRepository) UpdateStatus(ctx context.Context, tripID uuid.UUID, status entity.TripStatus) error {
	query := `UPDATE trips SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, tripID, status)
	if err != nil {
		r.log.Error("Failed to update trip status",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update trip %s status to %s: %w", tripID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s not found", tripID.String())
	}

	return nil
}

func scanTrips(rows pgx.Rows) ([]*entity.Trip, error) {
	var trips []*entity.Trip
	for rows.Next() {
		var trip entity.Trip
		err := rows.Scan(
			&trip.ID,
			&trip.Name,
			&trip.Destination,
			&trip.MaxCapacity,
			&trip.SpotsAvailable,
			&trip.Price,
			&trip.Status,
			&trip.Tags,
			&trip.NextDeparture,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip row: %w", err)
		}
		trips = append(trips, &trip)
	}

	return trips, nil
}
