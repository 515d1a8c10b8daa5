package recipe

import (
	"encoding/json"
	"sort"
)

// cacheKeyPayload 快取鍵的正規化內容。
// 欄位順序固定，食材與限制條件先排序，讓只差輸入順序的請求得到同一把鍵。
// preferences / equipment / locale 刻意不參與鍵值，沿用既有快取語意，
// 改動會讓既有快取族群全部失效。
type cacheKeyPayload struct {
	Ingredients []string `json:"ingredients"`
	Constraints []string `json:"constraints"`
	TimeMinutes int      `json:"time_minutes"`
	Servings    int      `json:"servings"`
}

// DeriveCacheKey 從請求導出穩定的快取鍵。
// 純函數；相同語意的請求保證得到 byte 相同的字串。
func DeriveCacheKey(req *GenerationRequest) string {
	ingredients := append([]string(nil), req.Ingredients...)
	sort.Strings(ingredients)

	constraints := make([]string, 0, len(req.Constraints))
	constraints = append(constraints, req.Constraints...)
	sort.Strings(constraints)

	payload := cacheKeyPayload{
		Ingredients: ingredients,
		Constraints: constraints,
		TimeMinutes: req.TimeMinutes,
		Servings:    req.Servings,
	}

	// struct 欄位順序固定，json.Marshal 的輸出即為穩定序列化
	data, _ := json.Marshal(payload)
	return string(data)
}
