package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	recipecore "recipema/internal/core/recipe"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 記錄收到的請求並回傳預先準備的食譜
type fakeGenerator struct {
	lastReq    *recipecore.GenerationRequest
	lastUserID string
	result     *recipecore.Recipe
}

func (f *fakeGenerator) Generate(ctx context.Context, req *recipecore.GenerationRequest, userID string) *recipecore.Recipe {
	f.lastReq = req
	f.lastUserID = userID
	return f.result
}

func newTestRouter(gen Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(gen)
	r.POST("/recipes/generate", h.HandleGenerate)
	r.GET("/recipes/history", h.HandleHistory)
	return r
}

func stubRecipe() *recipecore.Recipe {
	return &recipecore.Recipe{
		ID:    "recipe_abc123def456",
		Title: "Tomato Soup",
		Ingredients: []recipecore.RecipeIngredient{
			{Name: "tomato", Amount: "2", Notes: ""},
		},
		Steps: []recipecore.RecipeStep{
			{Order: 1, Instruction: "Simmer.", TimerSeconds: 600},
		},
		GeneratedBy: recipecore.GeneratedByDeepSeek,
	}
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandleGenerate(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"ingredients":["tomato","onion"],"time_minutes":20}`)

		require.Equal(t, http.StatusOK, w.Code)

		var got recipecore.Recipe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "recipe_abc123def456", got.ID)
		assert.Equal(t, "Tomato Soup", got.Title)

		// 請求已套用預設值後才交給協調器
		require.NotNil(t, gen.lastReq)
		assert.Equal(t, []string{"tomato", "onion"}, gen.lastReq.Ingredients)
		assert.Equal(t, 20, gen.lastReq.TimeMinutes)
		assert.Equal(t, recipecore.DefaultServings, gen.lastReq.Servings)
		assert.Equal(t, recipecore.DefaultLocale, gen.lastReq.Locale)
		assert.Equal(t, "anonymous", gen.lastUserID)
	})

	t.Run("missing ingredients is 400", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"time_minutes":20}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Ingredients")
		assert.Nil(t, gen.lastReq)
	})

	t.Run("too many ingredients is 400", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		items := make([]string, 0, 21)
		for i := 0; i < 21; i++ {
			items = append(items, `"x"`)
		}
		w := postJSON(r, "/recipes/generate", `{"ingredients":[`+strings.Join(items, ",")+`]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("out of range time is 400", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"ingredients":["tomato"],"time_minutes":999}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "TimeMinutes")
	})

	t.Run("blank ingredient is 400", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"ingredients":["   "]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must not be blank")
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"ingredients":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("request id echoed when missing", func(t *testing.T) {
		gen := &fakeGenerator{result: stubRecipe()}
		r := newTestRouter(gen)

		w := postJSON(r, "/recipes/generate", `{"ingredients":["tomato"]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestHandleHistory(t *testing.T) {
	gen := &fakeGenerator{result: stubRecipe()}
	r := newTestRouter(gen)

	t.Run("defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/history", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page":1`)
		assert.Contains(t, w.Body.String(), `"limit":10`)
	})

	t.Run("limit capped", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/history?page=2&limit=500", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page":2`)
		assert.Contains(t, w.Body.String(), `"limit":50`)
	})

	t.Run("bad query values fall back", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/history?page=zero&limit=-3", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page":1`)
		assert.Contains(t, w.Body.String(), `"limit":10`)
	})
}
