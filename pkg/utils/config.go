package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Booking  BookingConfig
	Campaign CampaignConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	URL string
}

type BookingConfig struct {
	AdvanceRatio     float64
	LockTTLMinutes   int
	PromoteThreshold float64
}

type CampaignConfig struct {
	LookaheadDays        int
	DedupWindowHours     int
	EngagementWindowDays int
	BatchCap             int
	ScanIntervalMinutes  int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("ADVANCE_RATIO", 0.3)
	viper.SetDefault("LOCK_TTL_MINUTES", 15)
	viper.SetDefault("PROMOTE_THRESHOLD", 0.8)
	viper.SetDefault("CAMPAIGN_LOOKAHEAD_DAYS", 90)
	viper.SetDefault("CAMPAIGN_DEDUP_WINDOW_HOURS", 24)
	viper.SetDefault("CAMPAIGN_ENGAGEMENT_WINDOW_DAYS", 30)
	viper.SetDefault("CAMPAIGN_BATCH_CAP", 50)
	viper.SetDefault("CAMPAIGN_SCAN_INTERVAL_MINUTES", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Queue: QueueConfig{
			URL: viper.GetString("AMQP_URL"),
		},
		Booking: BookingConfig{
			AdvanceRatio:     viper.GetFloat64("ADVANCE_RATIO"),
			LockTTLMinutes:   viper.GetInt("LOCK_TTL_MINUTES"),
			PromoteThreshold: viper.GetFloat64("PROMOTE_THRESHOLD"),
		},
		Campaign: CampaignConfig{
			LookaheadDays:        viper.GetInt("CAMPAIGN_LOOKAHEAD_DAYS"),
			DedupWindowHours:     viper.GetInt("CAMPAIGN_DEDUP_WINDOW_HOURS"),
			EngagementWindowDays: viper.GetInt("CAMPAIGN_ENGAGEMENT_WINDOW_DAYS"),
			BatchCap:             viper.GetInt("CAMPAIGN_BATCH_CAP"),
			ScanIntervalMinutes:  viper.GetInt("CAMPAIGN_SCAN_INTERVAL_MINUTES"),
		},
	}

	return config, nil
}
