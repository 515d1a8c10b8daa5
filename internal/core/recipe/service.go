package recipe

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"recipema/internal/infrastructure/config"
	"recipema/internal/pkg/common"

	"go.uber.org/zap"
)

// ChatClient 聊天補全客戶端。由 deepseek.Client 實作，測試時可注入假實作。
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CacheStore 食譜快取。與 cache.Store 同形，宣告在這裡避免循環依賴。
type CacheStore interface {
	Get(ctx context.Context, key string) (*Recipe, bool, error)
	Set(ctx context.Context, key string, r *Recipe, ttl time.Duration) error
}

// Service 食譜生成協調器。
// 串起快取查詢、LLM 調用、回應驗證、fallback 合成與快取回寫。
// 所有依賴由建構時注入，不透過全域狀態取得。
type Service struct {
	chat  ChatClient
	store CacheStore
	cfg   *config.Config
}

// NewService 創建食譜生成協調器。store 可為 nil，此時一律視為快取未命中。
func NewService(chat ChatClient, store CacheStore, cfg *config.Config) *Service {
	return &Service{
		chat:  chat,
		store: store,
		cfg:   cfg,
	}
}

// Generate 處理一次生成請求，永遠回傳結構有效的食譜。
// 請求必須已通過 Normalize()。LLM 或快取的任何失敗都在內部吸收：
// 讀取失敗降級為未命中、LLM 失敗改走 fallback、寫入失敗記錄後吞掉。
func (s *Service) Generate(ctx context.Context, req *GenerationRequest, userID string) *Recipe {
	key := DeriveCacheKey(req)

	// 先查快取，命中時原樣回傳
	if s.store != nil {
		cached, ok, err := s.store.Get(ctx, key)
		if err != nil {
			common.LogError("快取讀取失敗，視為未命中",
				zap.Error(err),
				zap.String("user_id", userID),
			)
		} else if ok {
			common.LogInfo("食譜由快取提供",
				zap.String("recipe_id", cached.ID),
				zap.String("user_id", userID),
			)
			return cached
		}
	}

	result := s.generateViaLLM(ctx, req, userID)

	// 兩條路徑的結果都回寫快取，寫入失敗不影響回應
	if s.store != nil {
		if err := s.store.Set(ctx, key, result, s.cfg.Cache.TTL); err != nil {
			common.LogWarn("快取寫入失敗",
				zap.Error(err),
				zap.String("recipe_id", result.ID),
			)
		}
	}

	return result
}

// generateViaLLM 調用 LLM 生成食譜，任何失敗改用 fallback 合成
func (s *Service) generateViaLLM(ctx context.Context, req *GenerationRequest, userID string) *Recipe {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.DeepSeek.Timeout)
	defer cancel()

	start := time.Now()
	content, err := s.chat.Complete(callCtx, SystemPrompt, BuildUserPrompt(req))
	common.LogAICall(time.Since(start), err, userID)

	if err != nil {
		// 超時、非 2xx、限流、配額，全部折入 fallback，不重試也不外拋
		return s.fallback(req, userID)
	}

	parsed, err := parseLLMRecipe(content)
	if err != nil {
		common.LogError("LLM 回應無法使用，改用 fallback",
			zap.Error(err),
			zap.Int("content_length", len(content)),
			zap.String("user_id", userID),
		)
		return s.fallback(req, userID)
	}

	stamp(parsed, GeneratedByDeepSeek)
	common.LogInfo("食譜生成成功",
		zap.String("recipe_id", parsed.ID),
		zap.String("user_id", userID),
		zap.Int("ingredient_count", len(req.Ingredients)),
	)
	return parsed
}

// fallback 合成保底食譜並蓋上來源標記
func (s *Service) fallback(req *GenerationRequest, userID string) *Recipe {
	r := SynthesizeFallback(req.Ingredients, req.Servings)
	stamp(r, GeneratedByFallback)
	common.LogInfo("已改用合成食譜",
		zap.String("recipe_id", r.ID),
		zap.String("user_id", userID),
	)
	return r
}

// parseLLMRecipe 將 LLM 輸出解碼為食譜。
// 格式錯誤、缺少必要欄位都歸類為同一種「輸出無法使用」錯誤，由呼叫端轉入 fallback。
func parseLLMRecipe(content string) (*Recipe, error) {
	var r Recipe
	if err := common.ParseJSON(common.ExtractJSONObject(content), &r); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	if !r.Valid() {
		return nil, fmt.Errorf("missing required fields (title/ingredients/steps)")
	}

	// 步驟編號必須從 1 開始且連續，模型偶爾會漏給或亂跳
	for i := range r.Steps {
		r.Steps[i].Order = i + 1
		if r.Steps[i].TimerSeconds < 0 {
			r.Steps[i].TimerSeconds = 0
		}
	}

	return &r, nil
}

// stamp 補上 id、建立時間與來源標記
func stamp(r *Recipe, generatedBy string) {
	r.ID = newRecipeID()
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	r.GeneratedBy = generatedBy
}

// newRecipeID 生成短雜湊 id。不要求全域唯一，但在實務流量下碰撞機率極低。
func newRecipeID() string {
	var nonce [8]byte
	_, _ = rand.Read(nonce[:])
	sum := sha1.Sum([]byte(fmt.Sprintf("%d%x", time.Now().UnixNano(), nonce)))
	return "recipe_" + hex.EncodeToString(sum[:])[:12]
}
