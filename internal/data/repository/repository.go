package repository

import (
	"time"

	"travel-booking/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	Trip        TripRepository
	SeatLock    SeatLockRepository
	Booking     BookingRepository
	Payment     PaymentRepository
	Lead        LeadRepository
	CampaignLog CampaignLogRepository
}

// NewRepository wires all repositories. When a redis client is available
// the campaign dedup window lives there; otherwise it falls back to the
// campaign_log table.
func NewRepository(db database.PgxIface, redisClient *redis.Client, dedupWindow time.Duration, log *zap.Logger) *Repository {
	var campaignLog CampaignLogRepository
	if redisClient != nil {
		campaignLog = NewRedisCampaignLog(redisClient, dedupWindow, log)
	} else {
		campaignLog = NewCampaignLogRepository(db, log)
	}

	return &Repository{
		Trip:        NewTripRepository(db, log),
		SeatLock:    NewSeatLockRepository(db, log),
		Booking:     NewBookingRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
		Lead:        NewLeadRepository(db, log),
		CampaignLog: campaignLog,
	}
}
