// File: utils/cache.go
package utils

import (
	"context"
	"inkwell/config"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// HoldClient is the Redis client backing slot-hold coordination.
	HoldClient *redis.Client
	// EventClient is the Redis client used for calendar event pub/sub.
	EventClient *redis.Client
)

// InitHoldClient initializes the Redis client for the slot-hold store.
func InitHoldClient() {
	HoldClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisHoldDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := HoldClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Holds): %v", err)
	}
}

// GetHoldClient returns the Redis client for the slot-hold store.
func GetHoldClient() *redis.Client {
	if HoldClient == nil {
		InitHoldClient()
	}
	return HoldClient
}

// InitEventClient initializes the Redis client for event pub/sub.
func InitEventClient() {
	EventClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := EventClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Events): %v", err)
	}
}

// GetEventClient returns the Redis client for event pub/sub.
func GetEventClient() *redis.Client {
	if EventClient == nil {
		InitEventClient()
	}
	return EventClient
}
