package ocr

import (
	"regexp"
	"strings"
)

// MaxExtractedIngredients 單次擷取的食材上限
const MaxExtractedIngredients = 15

// pantryKeywords 常見食材詞彙表。關鍵字比對以這份清單為準，命中時記錄關鍵字本身而非原始 token。
var pantryKeywords = []string{
	"tomato", "onion", "garlic", "pepper", "salt", "oil", "butter", "flour",
	"sugar", "egg", "milk", "cheese", "chicken", "beef", "fish", "rice",
	"pasta", "bread", "carrot", "potato", "lettuce", "spinach", "mushroom",
	"basil", "oregano", "thyme", "rosemary", "parsley", "cilantro", "ginger",
	"lemon", "lime", "apple", "banana", "strawberry", "blueberry", "avocado",
}

var (
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
	// 數量 + 可選單位 + 名稱，對原始（未轉小寫）文字掃描
	quantityPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:cups?|tbsp|tsp|oz|lbs?|kg|g|ml|l)?\s+([a-zA-Z\s]+)`)
)

// ExtractIngredients 從 OCR 原始文字擷取食材名稱。
// 兩道擷取：先做關鍵字比對（依首次出現順序），再做數量模式比對
// （依匹配順序），以小寫鍵去重，輸出首字大寫，總數截斷到 15。
func ExtractIngredients(rawText string) []string {
	ingredients := make([]string, 0, MaxExtractedIngredients)
	seen := make(map[string]bool)

	// 關鍵字比對：小寫、去除標點、按空白切詞，丟棄長度 <=2 的 token
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(rawText), " ")
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		for _, keyword := range pantryKeywords {
			if strings.Contains(word, keyword) || strings.Contains(keyword, word) {
				if !seen[keyword] {
					ingredients = append(ingredients, capitalizeFirst(keyword))
					seen[keyword] = true
				}
				break
			}
		}
	}

	// 數量模式比對：擷取數量後面的名稱片段
	for _, match := range quantityPattern.FindAllStringSubmatch(rawText, -1) {
		name := strings.ToLower(strings.TrimSpace(match[2]))
		if len(name) > 2 && !seen[name] {
			ingredients = append(ingredients, capitalizeFirst(name))
			seen[name] = true
		}
	}

	if len(ingredients) > MaxExtractedIngredients {
		ingredients = ingredients[:MaxExtractedIngredients]
	}
	return ingredients
}

// TextConfidence 根據文字特徵估算辨識信心值，不影響擷取結果本身。
// 基準 0.5，有字母 +0.2，有數字 +0.1，長度 >50 +0.2，>200 再 +0.1，上限 1.0。
func TextConfidence(rawText string) float64 {
	trimmed := strings.TrimSpace(rawText)
	confidence := 0.5

	if strings.ContainsFunc(trimmed, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) {
		confidence += 0.2
	}
	if strings.ContainsFunc(trimmed, func(r rune) bool {
		return r >= '0' && r <= '9'
	}) {
		confidence += 0.1
	}
	if len(trimmed) > 50 {
		confidence += 0.2
	}
	if len(trimmed) > 200 {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// capitalizeFirst 首字大寫，其餘小寫
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
