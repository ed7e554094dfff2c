package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignLogRepository is the dedup record for occupancy campaigns: one
// entry per triggered trip, consulted to suppress repeat triggers inside
// the dedup window.
type CampaignLogRepository interface {
	HasRecentCampaign(ctx context.Context, tripID uuid.UUID, window time.Duration) (bool, error)
	MarkTriggered(ctx context.Context, tripID uuid.UUID, tier string, messages int) error
}

type campaignLogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCampaignLogRepository(db database.PgxIface, log *zap.Logger) CampaignLogRepository {
	return &campaignLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "campaign_log")),
	}
}

func (r *campaignLogRepository) HasRecentCampaign(ctx context.Context, tripID uuid.UUID, window time.Duration) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM campaign_log WHERE trip_id = $1 AND triggered_at >= NOW() - $2::interval)`

	var exists bool
	err := r.db.QueryRow(ctx, query, tripID, window.String()).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check recent campaign",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
		)
		return false, fmt.Errorf("check recent campaign for trip %s: %w", tripID.String(), err)
	}

	return exists, nil
}

func (r *campaignLogRepository) MarkTriggered(ctx context.Context, tripID uuid.UUID, tier string, messages int) error {
	query := `
		INSERT INTO campaign_log (id, trip_id, tier, messages, triggered_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.db.Exec(ctx, query, uuid.New(), tripID, tier, messages)
	if err != nil {
		r.log.Error("Failed to record campaign trigger",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("tier", tier),
		)
		return fmt.Errorf("record campaign trigger for trip %s: %w", tripID.String(), err)
	}

	return nil
}
