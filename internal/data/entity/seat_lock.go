package entity

import (
	"time"

	"github.com/google/uuid"
)

type LockStatus string

const (
	LockStatusActive   LockStatus = "active"
	LockStatusExpired  LockStatus = "expired"
	LockStatusReleased LockStatus = "released"
)

// SeatLock is a time-limited hold on N seats of one trip. Capacity is
// decremented when the lock is created, and credited back exactly once
// when the lock ends in "expired" or "released" without a booking.
type SeatLock struct {
	BaseSimple
	TripID    uuid.UUID  `db:"trip_id"`
	UserID    uuid.UUID  `db:"user_id"`
	Seats     int        `db:"seats"`
	Status    LockStatus `db:"status"`
	ExpiresAt time.Time  `db:"expires_at"`
}

func (l *SeatLock) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
