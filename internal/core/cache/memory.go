package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"recipema/internal/core/recipe"
	"recipema/internal/infrastructure/config"
	"recipema/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內快取後端，開發與測試環境用，語意對齊 RedisStore。
type MemoryStore struct {
	config *config.CacheConfig
	mu     sync.RWMutex
	store  map[string]memoryEntry
	stats  memoryStats
	done   chan struct{}
	once   sync.Once
}

// memoryEntry 快取條目
type memoryEntry struct {
	data        []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 快取統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建行程內快取後端
func NewMemoryStore(cfg *config.CacheConfig) *MemoryStore {
	m := &MemoryStore{
		config: cfg,
		store:  make(map[string]memoryEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期條目的協程
	go m.startCleanup()

	common.LogInfo("記憶體快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Get 獲取快取的食譜
func (m *MemoryStore) Get(ctx context.Context, key string) (*recipe.Recipe, bool, error) {
	addr := StorageKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[addr]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss("memory")
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, addr)
		m.stats.evictions++
		m.stats.misses++
		common.LogCacheMiss("memory")
		return nil, false, nil
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[addr] = entry
	m.stats.hits++
	common.LogCacheHit("memory")

	var r recipe.Recipe
	if err := json.Unmarshal(entry.data, &r); err != nil {
		delete(m.store, addr)
		return nil, false, nil
	}

	return &r, true, nil
}

// Set 寫入快取，容量滿時先清過期再做 LRU 淘汰
func (m *MemoryStore) Set(ctx context.Context, key string, r *recipe.Recipe, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = m.config.TTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.MaxSize {
		evicted := m.cleanupLocked()
		if evicted > 0 {
			common.LogInfo("快取清理執行", zap.Int("清理數量", evicted))
		}
		for len(m.store) >= m.config.MaxSize {
			if !m.evictLRULocked() {
				break
			}
		}
	}

	now := time.Now()
	m.store[StorageKey(key)] = memoryEntry{
		data:        data,
		expiresAt:   now.Add(ttl),
		createdAt:   now,
		lastAccess:  now,
		accessCount: 0,
	}

	return nil
}

// startCleanup 啟動清理過期條目的協程
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanupLocked 清理過期條目，呼叫端須持有鎖
func (m *MemoryStore) cleanupLocked() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	return count
}

// evictLRULocked 淘汰最少使用的條目，呼叫端須持有鎖
func (m *MemoryStore) evictLRULocked() bool {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey == "" {
		return false
	}

	delete(m.store, oldestKey)
	m.stats.evictions++
	common.LogInfo("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	return true
}

// Stats 獲取快取統計信息
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉快取並停止清理協程
func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		close(m.done)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]memoryEntry)
	common.LogInfo("記憶體快取已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
