package usecase

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Capacity and lock failures are returned typed so
// callers can prompt a re-selection instead of retrying stale intent.
var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrTripNotBookable     = errors.New("trip is not open for booking")
	ErrLockNotFound        = errors.New("lock not found")
	ErrLockNotOwned        = errors.New("lock is not owned by this user")
	ErrLockExpired         = errors.New("your hold expired, please reselect")
	ErrLockTripMismatch    = errors.New("lock does not belong to this trip")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// InsufficientCapacityError carries the remaining seat count so the
// caller can surface "only N seats left".
type InsufficientCapacityError struct {
	SeatsLeft int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("only %d seats left", e.SeatsLeft)
}
