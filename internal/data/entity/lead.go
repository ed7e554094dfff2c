package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStage string

const (
	LeadStageNew         LeadStage = "new"
	LeadStageContacted   LeadStage = "contacted"
	LeadStageQualified   LeadStage = "qualified"
	LeadStageNegotiating LeadStage = "negotiating"
	LeadStageWon         LeadStage = "won"
	LeadStageLost        LeadStage = "lost"
)

type LeadSource string

const (
	LeadSourceReferral  LeadSource = "referral"
	LeadSourceWhatsApp  LeadSource = "whatsapp"
	LeadSourceWebsite   LeadSource = "website"
	LeadSourceInstagram LeadSource = "instagram"
	LeadSourceOther     LeadSource = "other"
)

// Lead is a CRM prospect considered for occupancy campaigns. The score
// inputs (stage, source, qualification, interests, engagement) live here;
// the ranking itself is owned by the campaign service.
type Lead struct {
	Base
	FullName           string     `db:"full_name"`
	Phone              string     `db:"phone"`
	UserID             *uuid.UUID `db:"user_id"`
	Stage              LeadStage  `db:"stage"`
	Source             LeadSource `db:"source"`
	QualificationScore int        `db:"qualification_score"`
	Interests          []string   `db:"interests"`
	LastEngagedAt      *time.Time `db:"last_engaged_at"`
}

// IsContactable reports whether the lead has a channel we can message.
func (l *Lead) IsContactable() bool {
	return l.Phone != ""
}

// EngagedWithin reports whether the lead interacted inside the window.
func (l *Lead) EngagedWithin(now time.Time, window time.Duration) bool {
	if l.LastEngagedAt == nil {
		return false
	}
	return l.LastEngagedAt.After(now.Add(-window))
}
