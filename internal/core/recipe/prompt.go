package recipe

import (
	"fmt"
	"strings"
)

// SystemPrompt 固定的系統指令，要求模型只回傳指定格式的 JSON
const SystemPrompt = `You are a professional chef and recipe creator. Generate recipes in EXACTLY the JSON format specified. Return ONLY valid JSON, no additional text.

IMPORTANT RULES:
1. Return ONLY the JSON object, no markdown formatting
2. All string values must be properly escaped
3. timer_seconds should be 0 unless timing is critical
4. voice_hint should be concise cooking tips
5. Ensure all nutrition values are realistic numbers
6. Include practical substitutions if ingredients are unavailable`

// BuildUserPrompt 將生成請求嵌入使用者指令。
// 同一請求產生的 prompt 必須完全相同，否則上游的快取語意會失效。
func BuildUserPrompt(req *GenerationRequest) string {
	constraints := "none"
	if len(req.Constraints) > 0 {
		constraints = strings.Join(req.Constraints, ", ")
	}
	equipment := "basic kitchen tools"
	if len(req.Equipment) > 0 {
		equipment = strings.Join(req.Equipment, ", ")
	}

	return fmt.Sprintf(`Create a recipe using these ingredients: %s.

Requirements:
- Cooking time: approximately %d minutes
- Servings: %d
- Dietary constraints: %s
- Available equipment: %s

Return the recipe in this EXACT JSON format:
{
  "title": "Recipe Name",
  "summary": "Brief description of the dish",
  "ingredients": [{"name": "ingredient", "amount": "quantity", "notes": "optional notes"}],
  "steps": [{"order": 1, "instruction": "detailed step", "timer_seconds": 300, "voice_hint": "helpful tip"}],
  "prep_minutes": 15,
  "cook_minutes": 20,
  "total_minutes": 35,
  "servings": %d,
  "nutrition": {"calories": 400, "protein_g": 25, "fat_g": 15, "carbs_g": 45},
  "substitutions": [{"missing": "ingredient", "replacement": "alternative", "notes": "substitution notes"}],
  "allergen_warnings": ["list", "of", "allergens"],
  "sources": [{"label": "Traditional", "url": ""}]
}`,
		strings.Join(req.Ingredients, ", "),
		req.TimeMinutes,
		req.Servings,
		constraints,
		equipment,
		req.Servings,
	)
}
