package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{
			AdvanceRatio:     0.3,
			LockTTLMinutes:   15,
			PromoteThreshold: 0.8,
		},
		Campaign: utils.CampaignConfig{
			LookaheadDays:        90,
			DedupWindowHours:     24,
			EngagementWindowDays: 30,
			BatchCap:             50,
			ScanIntervalMinutes:  60,
		},
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// ---------------------------------------------------------------------------
// trips

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*entity.Trip
}

func newFakeTripRepo(trips ...*entity.Trip) *fakeTripRepo {
	r := &fakeTripRepo{trips: make(map[uuid.UUID]*entity.Trip)}
	for _, trip := range trips {
		r.trips[trip.ID] = trip
	}
	return r
}

func (r *fakeTripRepo) Create(ctx context.Context, trip *entity.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[trip.ID] = trip
	return nil
}

func (r *fakeTripRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[id]
	if !ok {
		return nil, nil
	}
	copied := *trip
	return &copied, nil
}

func (r *fakeTripRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Trip
	for _, trip := range r.trips {
		copied := *trip
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTripRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.trips)), nil
}

func (r *fakeTripRepo) FindOpenTrips(ctx context.Context, departureBefore time.Time) ([]*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Trip
	for _, trip := range r.trips {
		if trip.Status != entity.TripStatusAvailable && trip.Status != entity.TripStatusPromoted {
			continue
		}
		if trip.NextDeparture != nil && trip.NextDeparture.After(departureBefore) {
			continue
		}
		copied := *trip
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTripRepo) ReserveSeats(ctx context.Context, tripID uuid.UUID, seats int, newStatus entity.TripStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[tripID]
	if !ok || trip.SpotsAvailable < seats {
		return false, nil
	}
	trip.SpotsAvailable -= seats
	trip.Status = newStatus
	return true, nil
}

func (r *fakeTripRepo) UpdateSeatState(ctx context.Context, tripID uuid.UUID, spotsAvailable int, status entity.TripStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip, ok := r.trips[tripID]; ok {
		trip.SpotsAvailable = spotsAvailable
		trip.Status = status
	}
	return nil
}

func (r *fakeTripRepo) UpdateStatus(ctx context.Context, tripID uuid.UUID, status entity.TripStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip, ok := r.trips[tripID]; ok {
		trip.Status = status
	}
	return nil
}

func (r *fakeTripRepo) spots(tripID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trips[tripID].SpotsAvailable
}

func (r *fakeTripRepo) status(tripID uuid.UUID) entity.TripStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trips[tripID].Status
}

// ---------------------------------------------------------------------------
// seat locks

type fakeSeatLockRepo struct {
	mu         sync.Mutex
	locks      map[uuid.UUID]*entity.SeatLock
	failCreate bool
}

func newFakeSeatLockRepo() *fakeSeatLockRepo {
	return &fakeSeatLockRepo{locks: make(map[uuid.UUID]*entity.SeatLock)}
}

func (r *fakeSeatLockRepo) Create(ctx context.Context, lock *entity.SeatLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errStoreDown
	}
	copied := *lock
	r.locks[lock.ID] = &copied
	return nil
}

func (r *fakeSeatLockRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		return nil, nil
	}
	copied := *lock
	return &copied, nil
}

func (r *fakeSeatLockRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.LockStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok || lock.Status != from {
		return false, nil
	}
	lock.Status = to
	return true, nil
}

func (r *fakeSeatLockRepo) ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok || lock.Status != entity.LockStatusActive || !lock.ExpiresAt.After(now) {
		return false, nil
	}
	lock.ExpiresAt = expiresAt
	return true, nil
}

func (r *fakeSeatLockRepo) FindExpiredActive(ctx context.Context, now time.Time, limit int) ([]*entity.SeatLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SeatLock
	for _, lock := range r.locks {
		if lock.Status == entity.LockStatusActive && lock.IsExpired(now) {
			copied := *lock
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSeatLockRepo) statusOf(id uuid.UUID) entity.LockStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[id].Status
}

// ---------------------------------------------------------------------------
// bookings

type fakeBookingRepo struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*entity.Booking
	order      []uuid.UUID
	failCreate bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errStoreDown
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	r.order = append(r.order, booking.ID)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, id := range r.order {
		booking := r.bookings[id]
		if booking.UserID == userID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking, ok := r.bookings[bookingID]; ok {
		booking.Status = status
	}
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

func (r *fakeBookingRepo) CountConfirmedSeatsByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seats := 0
	for _, booking := range r.bookings {
		if booking.TripID == tripID && booking.Status == entity.BookingStatusConfirmed {
			seats += booking.Seats
		}
	}
	return seats, nil
}

func (r *fakeBookingRepo) UserHasConfirmedForTrip(ctx context.Context, userID, tripID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.UserID == userID && booking.TripID == tripID && booking.Status == entity.BookingStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// ---------------------------------------------------------------------------
// payments

type fakePaymentRepo struct {
	mu         sync.Mutex
	payments   map[uuid.UUID]*entity.Payment
	failCreate bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*entity.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errStoreDown
	}
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.BookingID == bookingID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus, transactionID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment, ok := r.payments[paymentID]; ok {
		payment.Status = status
		if transactionID != nil {
			payment.TransactionID = transactionID
		}
	}
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payments, id)
	return nil
}

// ---------------------------------------------------------------------------
// leads

type fakeLeadRepo struct {
	leads []*entity.Lead
}

func (r *fakeLeadRepo) FindEngagedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Lead, error) {
	var out []*entity.Lead
	for _, lead := range r.leads {
		if lead.LastEngagedAt != nil && lead.LastEngagedAt.After(since) {
			out = append(out, lead)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// campaign log

type fakeCampaignLog struct {
	mu        sync.Mutex
	triggered map[uuid.UUID]string
}

func newFakeCampaignLog() *fakeCampaignLog {
	return &fakeCampaignLog{triggered: make(map[uuid.UUID]string)}
}

func (r *fakeCampaignLog) HasRecentCampaign(ctx context.Context, tripID uuid.UUID, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.triggered[tripID]
	return ok, nil
}

func (r *fakeCampaignLog) MarkTriggered(ctx context.Context, tripID uuid.UUID, tier string, messages int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggered[tripID] = tier
	return nil
}

// ---------------------------------------------------------------------------
// messenger

type sentMessage struct {
	leadID      uuid.UUID
	templateKey string
	variables   map[string]string
}

type createdTask struct {
	leadID uuid.UUID
	dueAt  time.Time
}

type fakeMessenger struct {
	mu          sync.Mutex
	messages    []sentMessage
	tasks       []createdTask
	failEnqueue bool
}

func (m *fakeMessenger) EnqueueMessage(ctx context.Context, leadID uuid.UUID, templateKey string, variables map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEnqueue {
		return "", errStoreDown
	}
	m.messages = append(m.messages, sentMessage{leadID: leadID, templateKey: templateKey, variables: variables})
	return uuid.New().String(), nil
}

func (m *fakeMessenger) CreateTask(ctx context.Context, leadID uuid.UUID, dueAt time.Time, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, createdTask{leadID: leadID, dueAt: dueAt})
	return uuid.New().String(), nil
}

// ---------------------------------------------------------------------------
// builders

func newTestTrip(maxCapacity, spotsAvailable int, price float64) *entity.Trip {
	return &entity.Trip{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:           "Bromo Sunrise",
		Destination:    "Bromo",
		MaxCapacity:    maxCapacity,
		SpotsAvailable: spotsAvailable,
		Price:          price,
		Status:         entity.TripStatusFor(spotsAvailable, maxCapacity, 0.8),
		Tags:           []string{"mountain", "sunrise"},
	}
}

func newTestRepository(trips *fakeTripRepo, locks *fakeSeatLockRepo, bookings *fakeBookingRepo, payments *fakePaymentRepo, leads *fakeLeadRepo, campaignLog *fakeCampaignLog) *repository.Repository {
	return &repository.Repository{
		Trip:        trips,
		SeatLock:    locks,
		Booking:     bookings,
		Payment:     payments,
		Lead:        leads,
		CampaignLog: campaignLog,
	}
}
