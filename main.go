// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"travel-booking/cmd"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/usecase"
	"travel-booking/internal/wire"
	"travel-booking/pkg/cache"
	"travel-booking/pkg/database"
	"travel-booking/pkg/queue"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis is optional. Without it the campaign dedup falls back to Postgres.
	redisClient := cache.NewRedisClient(config.Redis)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Redis connected successfully")
	}

	// Outbound messaging via AMQP
	var messenger usecase.Messenger
	if config.Queue.URL != "" {
		publisher, err := queue.NewPublisher(config.Queue.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to message queue", zap.Error(err))
		}
		defer publisher.Close()
		messenger = publisher
		logger.Info("Message queue connected successfully")
	} else {
		messenger = queue.NewNoopMessenger(logger)
		logger.Warn("AMQP_URL not set, campaign messages will be logged only")
	}

	// Initialize all repositories
	dedupWindow := time.Duration(config.Campaign.DedupWindowHours) * time.Hour
	repos := repository.NewRepository(db, redisClient, dedupWindow, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, messenger, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: expired-lock reconciler and campaign scanner
	wire.StartBackground(ctx, app.Service, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
