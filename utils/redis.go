package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hlefebvre/coliving-backend/config"
)

var RedisClient *redis.Client

// InitRedis connects the shared redis client used for dashboard caching and
// single-use signing token marks.
func InitRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	log.Println("✅ Redis connected")
	return nil
}

// CacheSet stores a value with a TTL. A nil client is a no-op so the server
// keeps working when redis is down.
func CacheSet(ctx context.Context, key string, value string, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, key, value, ttl).Err()
}

// CacheGet returns the cached value, or "" when missing or redis is unavailable.
func CacheGet(ctx context.Context, key string) string {
	if RedisClient == nil {
		return ""
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetToken stores a short-lived opaque token (password reset).
func SetToken(key, value string, ttl time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Set(context.Background(), key, value, ttl).Err()
}

// GetToken retrieves a stored token value.
func GetToken(key string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("redis not initialized")
	}
	return RedisClient.Get(context.Background(), key).Result()
}

// DeleteToken removes a consumed token.
func DeleteToken(key string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(context.Background(), key).Err()
}

// MarkTokenUsed records a signing token JTI so the link cannot be replayed.
// Returns false if the token was already consumed.
func MarkTokenUsed(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if RedisClient == nil {
		// Without redis the duplicate-signer check on the contract itself
		// still guards the flow.
		return true, nil
	}
	ok, err := RedisClient.SetNX(ctx, "sign-token:"+jti, "used", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
