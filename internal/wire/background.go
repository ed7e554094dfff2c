package wire

import (
	"context"
	"time"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

const reconcileInterval = time.Minute

// StartBackground launches the periodic workers: the expired-lock
// reconciler and the occupancy campaign scanner. Both stop when ctx is
// cancelled.
func StartBackground(ctx context.Context, service *usecase.Service, config *utils.Config, log *zap.Logger) {
	go runLockReconciler(ctx, service.SeatLock, log)

	scanInterval := time.Duration(config.Campaign.ScanIntervalMinutes) * time.Minute
	if scanInterval > 0 {
		go runCampaignScanner(ctx, service.Campaign, scanInterval, log)
	}
}

func runLockReconciler(ctx context.Context, locks usecase.SeatLockService, log *zap.Logger) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := locks.ReconcileExpired(ctx)
			if err != nil {
				log.Error("Lock reconciliation failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				log.Info("Expired seat locks reclaimed", zap.Int("count", expired))
			}
		}
	}
}

func runCampaignScanner(ctx context.Context, campaigns usecase.CampaignService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := campaigns.RunOccupancyScan(ctx, false); err != nil {
				log.Error("Scheduled occupancy scan failed", zap.Error(err))
			}
		}
	}
}
