package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisCampaignLog keeps the dedup window in redis: one key per trip with
// a TTL equal to the window. The key outlives the process, so restarts do
// not re-trigger campaigns.
type redisCampaignLog struct {
	client *redis.Client
	window time.Duration
	log    *zap.Logger
}

func NewRedisCampaignLog(client *redis.Client, window time.Duration, log *zap.Logger) CampaignLogRepository {
	return &redisCampaignLog{
		client: client,
		window: window,
		log:    log.With(zap.String("repository", "campaign_log_redis")),
	}
}

func campaignKey(tripID uuid.UUID) string {
	return "campaign:trip:" + tripID.String()
}

func (r *redisCampaignLog) HasRecentCampaign(ctx context.Context, tripID uuid.UUID, window time.Duration) (bool, error) {
	n, err := r.client.Exists(ctx, campaignKey(tripID)).Result()
	if err != nil {
		r.log.Error("Failed to check campaign key",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
		)
		return false, fmt.Errorf("check campaign key for trip %s: %w", tripID.String(), err)
	}

	return n > 0, nil
}

func (r *redisCampaignLog) MarkTriggered(ctx context.Context, tripID uuid.UUID, tier string, messages int) error {
	// NX so a concurrent scan that lost the race does not extend the window.
	value := fmt.Sprintf("%s:%d", tier, messages)
	err := r.client.SetNX(ctx, campaignKey(tripID), value, r.window).Err()
	if err != nil {
		r.log.Error("Failed to set campaign key",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("tier", tier),
		)
		return fmt.Errorf("set campaign key for trip %s: %w", tripID.String(), err)
	}

	return nil
}
