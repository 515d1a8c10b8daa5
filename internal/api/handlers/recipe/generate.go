package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"recipema/internal/api/middleware"
	recipecore "recipema/internal/core/recipe"
	"recipema/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator 食譜生成協調器介面，由 recipecore.Service 實作
type Generator interface {
	Generate(ctx context.Context, req *recipecore.GenerationRequest, userID string) *recipecore.Recipe
}

// Handler 食譜處理程序
type Handler struct {
	generator Generator
}

// NewHandler 創建新的食譜處理程序
func NewHandler(generator Generator) *Handler {
	return &Handler{
		generator: generator,
	}
}

// HandleGenerate 處理食譜生成請求。
// 驗證失敗回 400（含欄位細節）；通過驗證後協調器保證回傳有效食譜，所以固定 200。
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	user := middleware.CurrentUser(c)

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req recipecore.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request format",
			"code":   common.ErrCodeInvalidRequest,
			"fields": validationDetails(err),
		})
		return
	}

	if err := req.Normalize(); err != nil {
		common.LogWarn("請求內容無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"code":   common.ErrCodeInvalidRequest,
			"fields": []string{err.Error()},
		})
		return
	}

	result := h.generator.Generate(c.Request.Context(), &req, user.ID)

	common.LogInfo("食譜生成請求完成",
		zap.String("request_id", requestID),
		zap.String("recipe_id", result.ID),
		zap.String("generated_by", result.GeneratedBy),
	)

	c.JSON(http.StatusOK, result)
}

// HandleHistory 食譜歷史查詢。
// TODO: 接上資料庫後回傳實際紀錄，目前只有分頁殼
func (h *Handler) HandleHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	common.LogDebug("食譜歷史查詢",
		zap.String("user_id", user.ID),
		zap.Int("page", page),
		zap.Int("limit", limit),
	)

	c.JSON(http.StatusOK, gin.H{
		"recipes": []recipecore.Recipe{},
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": 0,
			"pages": 0,
		},
	})
}

// validationDetails 把 binding 錯誤展開成欄位級訊息
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
	}
	return details
}
