package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequestNormalize(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		req := &GenerationRequest{
			Ingredients: []string{"tomato"},
		}

		require.NoError(t, req.Normalize())
		assert.Equal(t, DefaultTimeMinutes, req.TimeMinutes)
		assert.Equal(t, DefaultServings, req.Servings)
		assert.Equal(t, DefaultLocale, req.Locale)
		assert.NotNil(t, req.Constraints)
		assert.NotNil(t, req.Preferences)
		assert.NotNil(t, req.Equipment)
	})

	t.Run("should keep explicit values", func(t *testing.T) {
		req := &GenerationRequest{
			Ingredients: []string{"tomato"},
			TimeMinutes: 90,
			Servings:    6,
			Locale:      "zh-TW",
		}

		require.NoError(t, req.Normalize())
		assert.Equal(t, 90, req.TimeMinutes)
		assert.Equal(t, 6, req.Servings)
		assert.Equal(t, "zh-TW", req.Locale)
	})

	t.Run("should trim ingredient whitespace", func(t *testing.T) {
		req := &GenerationRequest{
			Ingredients: []string{"  tomato  ", "onion\n"},
		}

		require.NoError(t, req.Normalize())
		assert.Equal(t, []string{"tomato", "onion"}, req.Ingredients)
	})

	t.Run("should reject blank ingredients", func(t *testing.T) {
		req := &GenerationRequest{
			Ingredients: []string{"tomato", "   "},
		}

		err := req.Normalize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ingredients[1]")
	})
}

func TestRecipeValid(t *testing.T) {
	valid := &Recipe{
		Title:       "Tomato Soup",
		Ingredients: []RecipeIngredient{{Name: "tomato"}},
		Steps:       []RecipeStep{{Order: 1, Instruction: "cook"}},
	}
	assert.True(t, valid.Valid())

	t.Run("rejects missing pieces", func(t *testing.T) {
		var nilRecipe *Recipe
		assert.False(t, nilRecipe.Valid())

		noTitle := *valid
		noTitle.Title = ""
		assert.False(t, noTitle.Valid())

		noIngredients := *valid
		noIngredients.Ingredients = nil
		assert.False(t, noIngredients.Valid())

		noSteps := *valid
		noSteps.Steps = nil
		assert.False(t, noSteps.Valid())
	})
}
