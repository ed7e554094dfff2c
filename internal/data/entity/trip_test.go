package entity

import (
	"testing"
	"time"
)

func TestTripStatusFor(t *testing.T) {
	tests := []struct {
		name           string
		spotsAvailable int
		maxCapacity    int
		want           TripStatus
	}{
		{"untouched trip", 20, 20, TripStatusAvailable},
		{"partially booked", 10, 20, TripStatusAvailable},
		{"just under promote threshold", 5, 20, TripStatusAvailable},
		{"at promote threshold", 4, 20, TripStatusPromoted},
		{"one seat left", 1, 20, TripStatusPromoted},
		{"sold out", 0, 20, TripStatusFull},
		{"small trip at threshold", 1, 5, TripStatusPromoted},
		{"small trip available", 2, 5, TripStatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TripStatusFor(tt.spotsAvailable, tt.maxCapacity, 0.8)
			if got != tt.want {
				t.Errorf("TripStatusFor(%d, %d) = %q, want %q",
					tt.spotsAvailable, tt.maxCapacity, got, tt.want)
			}
		})
	}
}

func TestTripIsOpenForBooking(t *testing.T) {
	trip := &Trip{MaxCapacity: 10, SpotsAvailable: 3, Status: TripStatusAvailable}
	if !trip.IsOpenForBooking() {
		t.Error("available trip with seats should be open for booking")
	}

	trip.Status = TripStatusCancelled
	if trip.IsOpenForBooking() {
		t.Error("cancelled trip should not be open for booking")
	}

	trip.Status = TripStatusFull
	trip.SpotsAvailable = 0
	if trip.IsOpenForBooking() {
		t.Error("full trip should not be open for booking")
	}
}

func TestSeatLockIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	lock := &SeatLock{ExpiresAt: now.Add(time.Minute)}
	if lock.IsExpired(now) {
		t.Error("lock expiring in the future should not be expired")
	}

	lock.ExpiresAt = now.Add(-time.Second)
	if !lock.IsExpired(now) {
		t.Error("lock past its expiry should be expired")
	}
}
