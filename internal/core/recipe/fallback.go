package recipe

import (
	"fmt"
	"strings"
)

// SynthesizeFallback 在 LLM 不可用或回傳內容無法使用時，以純函數方式合成食譜。
// 不做任何外部呼叫，對任何非空食材列表都保證成功，且產出的食譜必然通過 Valid()。
// id / created_at / generated_by 由呼叫端補上。
func SynthesizeFallback(ingredients []string, servings int) *Recipe {
	first := ingredients[0]

	summaryCount := len(ingredients)
	if summaryCount > 3 {
		summaryCount = 3
	}

	recipeIngredients := make([]RecipeIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		recipeIngredients = append(recipeIngredients, RecipeIngredient{
			Name:   ing,
			Amount: "as needed",
			Notes:  "",
		})
	}

	return &Recipe{
		Title:   fmt.Sprintf("Simple %s Recipe", first),
		Summary: fmt.Sprintf("A basic recipe using %s and other ingredients.", strings.Join(ingredients[:summaryCount], ", ")),
		Ingredients: recipeIngredients,
		Steps: []RecipeStep{
			{
				Order:        1,
				Instruction:  fmt.Sprintf("Prepare all ingredients: %s.", strings.Join(ingredients, ", ")),
				TimerSeconds: 0,
				VoiceHint:    "Take your time with preparation",
			},
			{
				Order:        2,
				Instruction:  "Combine ingredients according to your preference and cook until done.",
				TimerSeconds: 0,
				VoiceHint:    "Taste and adjust seasoning as needed",
			},
			{
				Order:        3,
				Instruction:  "Serve hot and enjoy your meal!",
				TimerSeconds: 0,
				VoiceHint:    "Let it rest for a moment before serving",
			},
		},
		PrepMinutes:  10,
		CookMinutes:  15,
		TotalMinutes: 25,
		Servings:     servings,
		Nutrition: Nutrition{
			Calories: 300,
			ProteinG: 15,
			FatG:     10,
			CarbsG:   30,
		},
		Substitutions:    []Substitution{},
		AllergenWarnings: []string{},
		Sources: []Source{
			{Label: "Generated Recipe", URL: ""},
		},
	}
}
