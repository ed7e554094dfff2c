package adaptor

import (
	"net/http"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type CampaignHandler struct {
	service usecase.CampaignService
	log     *zap.Logger
}

func NewCampaignHandler(service usecase.CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		service: service,
		log:     log.With(zap.String("handler", "campaign")),
	}
}

// RunOccupancyScan handles POST /api/admin/campaigns/occupancy-scan (admin only).
// Pass ?dry_run=true to preview the scan without queueing anything.
func (h *CampaignHandler) RunOccupancyScan(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"

	result, err := h.service.RunOccupancyScan(r.Context(), dryRun)
	if err != nil {
		h.log.Error("Failed to run occupancy scan", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
