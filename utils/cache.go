// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"eventura/config"

	"github.com/go-redis/redis/v8"
)

// ConversationCacheClient backs the conversation memory of the AI agent.
var ConversationCacheClient *redis.Client

// InitConversationCache initializes the Redis client for conversation memory (DB from AppConfig).
func InitConversationCache() {
	ConversationCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisConversationDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ConversationCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Conversation Cache): %v", err)
	}
}

// GetConversationCacheClient returns the conversation memory client, connecting on first use.
func GetConversationCacheClient() *redis.Client {
	if ConversationCacheClient == nil {
		InitConversationCache()
	}
	return ConversationCacheClient
}
