package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCampaign(
	r chi.Router,
	campaignHandler *adaptor.CampaignHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/campaigns", func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/admin/campaigns/occupancy-scan - Trigger a scan on demand (?dry_run=true to preview)
		r.Post("/occupancy-scan", campaignHandler.RunOccupancyScan)
	})
}
