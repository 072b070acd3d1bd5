// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"attendly/config"

	"github.com/go-redis/redis/v8"
)

// EventsClient is the Redis client used for the change-notification stream.
var EventsClient *redis.Client

// InitEventsClient initializes the pub/sub Redis client (REDIS_EVENTS_DB).
func InitEventsClient() {
	EventsClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventsDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := EventsClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Events): %v", err)
	}
}

// GetEventsClient returns the pub/sub client, connecting on first use.
func GetEventsClient() *redis.Client {
	if EventsClient == nil {
		InitEventsClient()
	}
	return EventsClient
}
