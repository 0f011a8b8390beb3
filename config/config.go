package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisHoldDB   int    `mapstructure:"REDIS_HOLD_DB"`
	RedisEventDB  int    `mapstructure:"REDIS_EVENT_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking engine tunables.
	HoldTTLMinutes            int `mapstructure:"HOLD_TTL_MINUTES"`
	ReservationTimeoutMinutes int `mapstructure:"RESERVATION_TIMEOUT_MINUTES"`
	PollIntervalSeconds       int `mapstructure:"POLL_INTERVAL_SECONDS"`
	PollMaxAttempts           int `mapstructure:"POLL_MAX_ATTEMPTS"`
	ManualGraceHours          int `mapstructure:"MANUAL_GRACE_HOURS"`

	// Payment gateway callback verification.
	GatewayWebhookSecret    string `mapstructure:"GATEWAY_WEBHOOK_SECRET"`
	GatewayToleranceSeconds int    `mapstructure:"GATEWAY_TOLERANCE_SECONDS"`

	// RabbitMQ for outbound notification events.
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_HOLD_DB", 0)
	viper.SetDefault("REDIS_EVENT_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "inkwell")
	viper.SetDefault("HOLD_TTL_MINUTES", 10)
	viper.SetDefault("RESERVATION_TIMEOUT_MINUTES", 15)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 2)
	viper.SetDefault("POLL_MAX_ATTEMPTS", 30)
	viper.SetDefault("MANUAL_GRACE_HOURS", 24)
	viper.SetDefault("GATEWAY_WEBHOOK_SECRET", "")
	viper.SetDefault("GATEWAY_TOLERANCE_SECONDS", 300)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "inkwell.bookings")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// HoldTTL returns the slot hold time-to-live.
func HoldTTL() time.Duration {
	return time.Duration(AppConfig.HoldTTLMinutes) * time.Minute
}

// ReservationTimeout returns how long a reservation_pending booking may
// wait for payment before it is cancelled.
func ReservationTimeout() time.Duration {
	return time.Duration(AppConfig.ReservationTimeoutMinutes) * time.Minute
}
