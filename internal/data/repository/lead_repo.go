package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"go.uber.org/zap"
)

type LeadRepository interface {
	// FindEngagedSince returns leads with any engagement after the given
	// time, newest first. Ranking and filtering is owned by the campaign
	// service; this only narrows the candidate pool.
	FindEngagedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Lead, error)
}

type leadRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLeadRepository(db database.PgxIface, log *zap.Logger) LeadRepository {
	return &leadRepository{
		db:  db,
		log: log.With(zap.String("repository", "lead")),
	}
}

func (r *leadRepository) FindEngagedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Lead, error) {
	query := `
		SELECT id, full_name, phone, user_id, stage, source, qualification_score, interests, last_engaged_at, created_at, updated_at
		FROM leads
		WHERE last_engaged_at IS NOT NULL AND last_engaged_at >= $1
		ORDER BY last_engaged_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		r.log.Error("Failed to find engaged leads",
			zap.Error(err),
			zap.Time("since", since),
		)
		return nil, fmt.Errorf("find leads engaged since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var lead entity.Lead
		err := rows.Scan(
			&lead.ID,
			&lead.FullName,
			&lead.Phone,
			&lead.UserID,
			&lead.Stage,
			&lead.Source,
			&lead.QualificationScore,
			&lead.Interests,
			&lead.LastEngagedAt,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan lead row", zap.Error(err))
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		leads = append(leads, &lead)
	}

	return leads, nil
}
