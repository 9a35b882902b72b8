package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Notification broker; empty AMQPURL means notifications go to the log.
	AMQPURL               string
	NotificationsExchange string

	// Background jobs
	OverdueSweepInterval time.Duration
	ReminderWindow       time.Duration

	// Requests per minute per client IP; 0 disables rate limiting.
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("NOTIFICATIONS_EXCHANGE", "schoolcore.notifications")
	viper.SetDefault("OVERDUE_SWEEP_INTERVAL", "5m")
	viper.SetDefault("REMINDER_WINDOW", "24h")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	sweepIntervalStr := viper.GetString("OVERDUE_SWEEP_INTERVAL")
	sweepInterval, err := time.ParseDuration(sweepIntervalStr)
	if err != nil || sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
		log.Printf("Warning: Invalid value for OVERDUE_SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepIntervalStr, sweepInterval)
	}

	reminderWindowStr := viper.GetString("REMINDER_WINDOW")
	reminderWindow, err := time.ParseDuration(reminderWindowStr)
	if err != nil || reminderWindow <= 0 {
		reminderWindow = 24 * time.Hour
		log.Printf("Warning: Invalid value for REMINDER_WINDOW ('%s'). Defaulting to %s.\n", reminderWindowStr, reminderWindow)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.NotificationsExchange = viper.GetString("NOTIFICATIONS_EXCHANGE")
	cfg.OverdueSweepInterval = sweepInterval
	cfg.ReminderWindow = reminderWindow
	cfg.RateLimitPerMinute = viper.GetInt("RATE_LIMIT_PER_MINUTE")

	return cfg, nil
}
