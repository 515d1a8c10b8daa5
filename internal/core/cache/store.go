package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"recipema/internal/core/recipe"
	"recipema/internal/infrastructure/config"
)

// Store 食譜快取。
// key 是 orchestrator 導出的正規化快取鍵；Store 實作先經過 StorageKey
// 雜湊成定長位址再存取，避免把原始食材文字當索引鍵。
// Get 找不到或過期時回傳 (nil, false, nil)，只有後端不可達才回傳 error；
// 呼叫端把 error 降級為未命中，Set 失敗則記錄後吞掉。
type Store interface {
	Get(ctx context.Context, key string) (*recipe.Recipe, bool, error)
	Set(ctx context.Context, key string, r *recipe.Recipe, ttl time.Duration) error
	Close() error
}

// StorageKey 將快取鍵雜湊成定長儲存位址
func StorageKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "recipe:" + hex.EncodeToString(sum[:])
}

// New 依設定建立快取後端。快取停用時回傳 (nil, nil)，呼叫端視為永遠未命中。
func New(cfg *config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(cfg), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
