package redis

import (
	"context"
	"fmt"
	"time"

	redis_v9 "github.com/redis/go-redis/v9"

	"study-service/internal/config"
	"study-service/internal/logger"
)

// Connect returns a pinged client, or nil when no address is configured.
func Connect(cfg *config.RedisConfig, log *logger.Logger) (*redis_v9.Client, error) {
	if cfg.Address == "" {
		log.Info("redis not configured, using in-memory cache")
		return nil, nil
	}

	client := redis_v9.NewClient(&redis_v9.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}

	log.Info("connected to Redis", "address", cfg.Address)
	return client, nil
}
