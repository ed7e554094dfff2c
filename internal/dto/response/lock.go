package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type LockResponse struct {
	LockID    string            `json:"lock_id"`
	TripID    string            `json:"trip_id"`
	Seats     int               `json:"seats"`
	Status    entity.LockStatus `json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func LockToResponse(lock *entity.SeatLock) LockResponse {
	return LockResponse{
		LockID:    lock.ID.String(),
		TripID:    lock.TripID.String(),
		Seats:     lock.Seats,
		Status:    lock.Status,
		ExpiresAt: lock.ExpiresAt,
	}
}
