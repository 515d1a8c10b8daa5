package recipe

import (
	"fmt"
	"strings"
)

// 生成請求的邊界值
const (
	MinIngredients      = 1
	MaxIngredients      = 20
	MaxIngredientLength = 100
	MaxListItems        = 10
	MaxListItemLength   = 50
	MinTimeMinutes      = 5
	MaxTimeMinutes      = 480
	MinServings         = 1
	MaxServings         = 12
	MaxLocaleLength     = 10

	DefaultTimeMinutes = 30
	DefaultServings    = 4
	DefaultLocale      = "en-US"
)

// 食譜來源標記
const (
	GeneratedByDeepSeek = "deepseek"
	GeneratedByFallback = "fallback"
)

// GenerationRequest 食譜生成請求
type GenerationRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1,max=20,dive,max=100"`
	Constraints []string `json:"constraints" binding:"omitempty,max=10,dive,max=50"`
	Preferences []string `json:"preferences" binding:"omitempty,max=10,dive,max=50"`
	Equipment   []string `json:"equipment" binding:"omitempty,max=10,dive,max=50"`
	TimeMinutes int      `json:"time_minutes" binding:"omitempty,min=5,max=480"`
	Servings    int      `json:"servings" binding:"omitempty,min=1,max=12"`
	Locale      string   `json:"locale" binding:"omitempty,max=10"`
}

// Normalize 套用預設值並驗證請求內容。
// gin 的 binding tag 已擋掉型別與範圍錯誤，這裡補齊預設值與空字串檢查。
func (r *GenerationRequest) Normalize() error {
	cleaned := make([]string, 0, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			return fmt.Errorf("ingredients[%d]: must not be blank", i)
		}
		cleaned = append(cleaned, ing)
	}
	if len(cleaned) < MinIngredients {
		return fmt.Errorf("ingredients: at least %d required", MinIngredients)
	}
	r.Ingredients = cleaned

	if r.Constraints == nil {
		r.Constraints = []string{}
	}
	if r.Preferences == nil {
		r.Preferences = []string{}
	}
	if r.Equipment == nil {
		r.Equipment = []string{}
	}
	if r.TimeMinutes == 0 {
		r.TimeMinutes = DefaultTimeMinutes
	}
	if r.Servings == 0 {
		r.Servings = DefaultServings
	}
	if r.Locale == "" {
		r.Locale = DefaultLocale
	}
	return nil
}

// RecipeIngredient 食譜內的單一食材
type RecipeIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Notes  string `json:"notes"`
}

// RecipeStep 食譜步驟
type RecipeStep struct {
	Order        int    `json:"order"`
	Instruction  string `json:"instruction"`
	TimerSeconds int    `json:"timer_seconds"`
	VoiceHint    string `json:"voice_hint"`
}

// Nutrition 營養資訊
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// Substitution 食材替代建議
type Substitution struct {
	Missing     string `json:"missing"`
	Replacement string `json:"replacement"`
	Notes       string `json:"notes"`
}

// Source 食譜出處
type Source struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Recipe 食譜。建立後不再變動，客戶端的收藏標記不會回寫到後端。
type Recipe struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Summary          string             `json:"summary"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	Steps            []RecipeStep       `json:"steps"`
	PrepMinutes      int                `json:"prep_minutes"`
	CookMinutes      int                `json:"cook_minutes"`
	TotalMinutes     int                `json:"total_minutes"`
	Servings         int                `json:"servings"`
	Nutrition        Nutrition          `json:"nutrition"`
	Substitutions    []Substitution     `json:"substitutions"`
	AllergenWarnings []string           `json:"allergen_warnings"`
	Sources          []Source           `json:"sources"`
	CreatedAt        string             `json:"created_at"`
	GeneratedBy      string             `json:"generated_by"`
}

// Valid 檢查食譜的結構不變量：標題、食材、步驟都不得為空。
// 不滿足的食譜不會回傳給呼叫端，一律改走 fallback。
func (r *Recipe) Valid() bool {
	return r != nil && r.Title != "" && len(r.Ingredients) > 0 && len(r.Steps) > 0
}
