package config

import (
	"log"
	"os"
	"time"

	"Lifeline/pkg/logger"
	"Lifeline/pkg/notification"
	"Lifeline/pkg/util"
)

type Config struct {
	DBDriver  string `env:"DB_DRIVER"`
	DSN       string `env:"DSN"`
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`

	Log logger.LogConfig

	// Messaging provider credential set. Missing any piece of it degrades
	// the channel to simulated mode for the whole process.
	Twilio notification.ChannelConfig

	// PacingInterval is the delay between consecutive sends of one dispatch.
	PacingInterval time.Duration `env:"PACING_INTERVAL"`

	// Optional Idempotency-Key dedupe window on the SOS trigger route.
	// Disabled by default: duplicate submissions dispatch duplicate
	// notifications, which is the documented provider-facing behavior.
	IdempotencyEnabled bool          `env:"IDEMPOTENCY_ENABLED"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"`

	// Per-IP rate limit on the SOS trigger route, ulule format ("10-M").
	SOSRateLimit string `env:"SOS_RATE_LIMIT"`

	// Optional Redis address for the idempotency store; empty keeps it
	// in-process.
	RedisAddr string `env:"REDIS_ADDR"`
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnv("MODE"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Twilio: notification.ChannelConfig{
			AccountSID:  util.GetEnv("TWILIO_ACCOUNT_SID"),
			AuthToken:   util.GetEnv("TWILIO_AUTH_TOKEN"),
			From:        util.GetEnv("TWILIO_FROM"),
			CountryCode: util.GetEnvDefault("DEFAULT_COUNTRY_CODE", "91"),
		},
		PacingInterval:     util.GetDurationEnv("PACING_INTERVAL"),
		IdempotencyEnabled: util.GetBoolEnv("IDEMPOTENCY_ENABLED"),
		IdempotencyTTL:     util.GetDurationEnv("IDEMPOTENCY_TTL"),
		SOSRateLimit:       util.GetEnvDefault("SOS_RATE_LIMIT", "30-M"),
		RedisAddr:          util.GetEnv("REDIS_ADDR"),
	}
	if GlobalConfig.PacingInterval <= 0 {
		GlobalConfig.PacingInterval = 1 * time.Second
	}
	if GlobalConfig.IdempotencyTTL <= 0 {
		GlobalConfig.IdempotencyTTL = 5 * time.Minute
	}
	return nil
}
