package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messenger is the outbound CRM/messaging collaborator. The campaign
// service decides whether, who and which tier; rendering and delivery
// happen behind this interface.
type Messenger interface {
	EnqueueMessage(ctx context.Context, leadID uuid.UUID, templateKey string, variables map[string]string) (string, error)
	CreateTask(ctx context.Context, leadID uuid.UUID, dueAt time.Time, description string) (string, error)
}

type UrgencyTier string

const (
	TierCritical UrgencyTier = "critical"
	TierModerate UrgencyTier = "moderate"
	TierNone     UrgencyTier = "none"
)

const (
	criticalOccupancyMax = 30.0
	moderateOccupancyMax = 50.0

	criticalTemplateKey = "occupancy_critical"
	moderateTemplateKey = "occupancy_moderate"

	criticalDiscountPct = 15
	moderateDiscountPct = 10

	// Weaker candidates are still worth messaging when a trip is in
	// trouble, so the inclusion bar drops for critical.
	criticalScoreThreshold = 20.0
	moderateScoreThreshold = 35.0

	followUpDelay = 48 * time.Hour

	leadPoolSize = 1000
)

// ClassifyOccupancy maps an occupancy percentage to the urgency tier.
func ClassifyOccupancy(rate float64) UrgencyTier {
	switch {
	case rate < criticalOccupancyMax:
		return TierCritical
	case rate < moderateOccupancyMax:
		return TierModerate
	default:
		return TierNone
	}
}

type CampaignService interface {
	// RunOccupancyScan walks bookable trips inside the departure
	// lookahead, classifies their occupancy and enqueues outreach for
	// under-booked ones. With dryRun set it selects and classifies but
	// produces no side effects.
	RunOccupancyScan(ctx context.Context, dryRun bool) (*response.OccupancyScanResult, error)
}

type campaignService struct {
	repo      *repository.Repository
	messenger Messenger

	lookahead        time.Duration
	dedupWindow      time.Duration
	engagementWindow time.Duration
	batchCap         int

	log   *zap.Logger
	clock func() time.Time
}

func NewCampaignService(repo *repository.Repository, messenger Messenger, config *utils.Config, log *zap.Logger) CampaignService {
	return &campaignService{
		repo:             repo,
		messenger:        messenger,
		lookahead:        time.Duration(config.Campaign.LookaheadDays) * 24 * time.Hour,
		dedupWindow:      time.Duration(config.Campaign.DedupWindowHours) * time.Hour,
		engagementWindow: time.Duration(config.Campaign.EngagementWindowDays) * 24 * time.Hour,
		batchCap:         config.Campaign.BatchCap,
		log:              log.With(zap.String("service", "campaign")),
		clock:            time.Now,
	}
}

func (s *campaignService) RunOccupancyScan(ctx context.Context, dryRun bool) (*response.OccupancyScanResult, error) {
	now := s.clock()

	trips, err := s.repo.Trip.FindOpenTrips(ctx, now.Add(s.lookahead))
	if err != nil {
		return nil, fmt.Errorf("scan trips: %w", err)
	}

	result := &response.OccupancyScanResult{
		TripsScanned: len(trips),
		Tiers:        map[string]int{},
		DryRun:       dryRun,
	}

	for _, trip := range trips {
		// A bad trip must not abort the batch.
		if err := s.scanTrip(ctx, trip, now, dryRun, result); err != nil {
			s.log.Error("Trip scan failed, continuing",
				zap.Error(err),
				zap.String("trip_id", trip.ID.String()),
			)
		}
	}

	s.log.Info("Occupancy scan finished",
		zap.Int("trips_scanned", result.TripsScanned),
		zap.Int("campaigns_triggered", result.CampaignsTriggered),
		zap.Int("messages_queued", result.MessagesQueued),
		zap.Int("tasks_created", result.TasksCreated),
		zap.Bool("dry_run", dryRun),
	)

	return result, nil
}

func (s *campaignService) scanTrip(ctx context.Context, trip *entity.Trip, now time.Time, dryRun bool, result *response.OccupancyScanResult) error {
	confirmedSeats, err := s.repo.Booking.CountConfirmedSeatsByTrip(ctx, trip.ID)
	if err != nil {
		return err
	}

	rate := float64(confirmedSeats) / float64(trip.MaxCapacity) * 100
	tier := ClassifyOccupancy(rate)
	result.Tiers[string(tier)]++

	if tier == TierNone {
		return nil
	}

	recent, err := s.repo.CampaignLog.HasRecentCampaign(ctx, trip.ID, s.dedupWindow)
	if err != nil {
		return err
	}
	if recent {
		s.log.Debug("Campaign suppressed by dedup window",
			zap.String("trip_id", trip.ID.String()),
		)
		return nil
	}

	candidates, err := s.selectLeads(ctx, trip, tier, now)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	s.log.Info("Occupancy campaign triggered",
		zap.String("trip_id", trip.ID.String()),
		zap.String("trip_name", trip.Name),
		zap.Float64("occupancy_rate", rate),
		zap.String("tier", string(tier)),
		zap.Int("leads", len(candidates)),
		zap.Bool("dry_run", dryRun),
	)

	result.CampaignsTriggered++

	if dryRun {
		result.MessagesQueued += len(candidates)
		if tier == TierCritical {
			result.TasksCreated += len(candidates)
		}
		return nil
	}

	queued := s.notifyLeads(ctx, trip, tier, candidates, now, result)

	if queued > 0 {
		if err := s.repo.CampaignLog.MarkTriggered(ctx, trip.ID, string(tier), queued); err != nil {
			s.log.Error("Failed to record campaign trigger",
				zap.Error(err),
				zap.String("trip_id", trip.ID.String()),
			)
		}
	}

	return nil
}

func (s *campaignService) notifyLeads(ctx context.Context, trip *entity.Trip, tier UrgencyTier, leads []*entity.Lead, now time.Time, result *response.OccupancyScanResult) int {
	templateKey := moderateTemplateKey
	discount := moderateDiscountPct
	if tier == TierCritical {
		templateKey = criticalTemplateKey
		discount = criticalDiscountPct
	}

	queued := 0
	for _, lead := range leads {
		vars := map[string]string{
			"trip_name":    trip.Name,
			"destination":  trip.Destination,
			"discount_pct": fmt.Sprintf("%d", discount),
		}
		if trip.NextDeparture != nil {
			vars["departure"] = trip.NextDeparture.Format("2006-01-02")
		}

		// A bad lead must not abort the batch either.
		if _, err := s.messenger.EnqueueMessage(ctx, lead.ID, templateKey, vars); err != nil {
			s.log.Error("Failed to enqueue campaign message, continuing",
				zap.Error(err),
				zap.String("lead_id", lead.ID.String()),
				zap.String("trip_id", trip.ID.String()),
			)
			continue
		}
		queued++
		result.MessagesQueued++

		if tier == TierCritical {
			desc := fmt.Sprintf("Follow up on %s outreach for %s", trip.Name, lead.FullName)
			if _, err := s.messenger.CreateTask(ctx, lead.ID, now.Add(followUpDelay), desc); err != nil {
				s.log.Error("Failed to create follow-up task, continuing",
					zap.Error(err),
					zap.String("lead_id", lead.ID.String()),
				)
				continue
			}
			result.TasksCreated++
		}
	}

	return queued
}

type scoredLead struct {
	lead  *entity.Lead
	score float64
}

// selectLeads filters the engaged pool down to contactable, qualifying
// leads without a confirmed booking on this trip, ranks them by weighted
// score and caps the batch.
func (s *campaignService) selectLeads(ctx context.Context, trip *entity.Trip, tier UrgencyTier, now time.Time) ([]*entity.Lead, error) {
	pool, err := s.repo.Lead.FindEngagedSince(ctx, now.Add(-s.engagementWindow), leadPoolSize)
	if err != nil {
		return nil, fmt.Errorf("load lead pool: %w", err)
	}

	threshold := moderateScoreThreshold
	if tier == TierCritical {
		threshold = criticalScoreThreshold
	}

	var scored []scoredLead
	for _, lead := range pool {
		if !lead.IsContactable() {
			continue
		}
		if !qualifyingStage(lead.Stage) {
			continue
		}

		if lead.UserID != nil {
			booked, err := s.repo.Booking.UserHasConfirmedForTrip(ctx, *lead.UserID, trip.ID)
			if err != nil {
				s.log.Error("Failed to check lead booking, skipping lead",
					zap.Error(err),
					zap.String("lead_id", lead.ID.String()),
				)
				continue
			}
			if booked {
				continue
			}
		}

		score := scoreLead(lead, trip)
		if score < threshold {
			continue
		}
		scored = append(scored, scoredLead{lead: lead, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > s.batchCap {
		scored = scored[:s.batchCap]
	}

	leads := make([]*entity.Lead, len(scored))
	for i, sl := range scored {
		leads[i] = sl.lead
	}

	return leads, nil
}

func qualifyingStage(stage entity.LeadStage) bool {
	switch stage {
	case entity.LeadStageContacted, entity.LeadStageQualified, entity.LeadStageNegotiating:
		return true
	default:
		return false
	}
}

// scoreLead is the weighted ranking: trip-interest match, qualification
// score, source and stage.
func scoreLead(lead *entity.Lead, trip *entity.Trip) float64 {
	score := 0.0

	if interestMatch(lead.Interests, trip) {
		score += 40
	}

	score += float64(lead.QualificationScore) * 0.3

	switch lead.Source {
	case entity.LeadSourceReferral:
		score += 15
	case entity.LeadSourceWhatsApp:
		score += 10
	case entity.LeadSourceWebsite:
		score += 8
	case entity.LeadSourceInstagram:
		score += 5
	default:
		score += 3
	}

	switch lead.Stage {
	case entity.LeadStageNegotiating:
		score += 15
	case entity.LeadStageQualified:
		score += 10
	case entity.LeadStageContacted:
		score += 5
	}

	return score
}

func interestMatch(interests []string, trip *entity.Trip) bool {
	for _, interest := range interests {
		if interest == trip.Destination {
			return true
		}
		for _, tag := range trip.Tags {
			if interest == tag {
				return true
			}
		}
	}
	return false
}
