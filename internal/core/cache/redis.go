package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipema/internal/core/recipe"
	"recipema/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipema/internal/pkg/common"
)

// RedisStore Redis 快取後端
type RedisStore struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisStore 創建 Redis 快取後端，啟動時測試連線
func NewRedisStore(cfg *config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.TTL),
	)

	return &RedisStore{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取快取的食譜。redis.Nil 視為未命中而非錯誤。
func (s *RedisStore) Get(ctx context.Context, key string) (*recipe.Recipe, bool, error) {
	data, err := s.client.Get(ctx, StorageKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("redis")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var r recipe.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		// 損壞的條目當作未命中，讓新結果覆寫掉
		common.LogWarn("快取條目解析失敗", zap.Error(err))
		return nil, false, nil
	}

	common.LogCacheHit("redis")
	return &r, true, nil
}

// Set 寫入快取，TTL 在寫入時套用
func (s *RedisStore) Set(ctx context.Context, key string, r *recipe.Recipe, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if ttl <= 0 {
		ttl = s.config.TTL
	}

	if err := s.client.Set(ctx, StorageKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
