package ocr

import (
	"io"
	"net/http"
	"strings"
	"time"

	"recipema/internal/api/middleware"
	imagesvc "recipema/internal/core/image"
	ocrcore "recipema/internal/core/ocr"
	"recipema/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 文字辨識響應
type Response struct {
	RawText              string   `json:"raw_text"`
	ExtractedIngredients []string `json:"extracted_ingredients"`
	Confidence           float64  `json:"confidence"`
	ProcessingTime       int64    `json:"processing_time"`
}

// Handler 文字辨識處理程序
type Handler struct {
	engine ocrcore.Engine
	images *imagesvc.Service
}

// NewHandler 創建文字辨識處理程序
func NewHandler(engine ocrcore.Engine, images *imagesvc.Service) *Handler {
	return &Handler{
		engine: engine,
		images: images,
	}
}

// HandleRecognize 處理圖片上傳並回傳擷取出的食材列表。
// 影像轉文字交給外部引擎，這裡只做前處理與擷取啟發式。
func (h *Handler) HandleRecognize(c *gin.Context) {
	user := middleware.CurrentUser(c)
	start := time.Now()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No image file provided",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	// 只接受 image/* 的上傳
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Only image files are allowed",
			"code":  common.ErrInvalidImageType.Code,
		})
		return
	}

	common.LogInfo("OCR processing started",
		zap.String("user_id", user.ID),
		zap.Int64("file_size", fileHeader.Size),
	)

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	normalized, err := h.images.Normalize(data)
	if err != nil {
		common.LogWarn("圖片前處理失敗",
			zap.Error(err),
			zap.String("user_id", user.ID),
		)
		status := http.StatusBadRequest
		code := common.ErrInvalidImageFormat.Code
		if strings.Contains(err.Error(), "exceeds maximum limit") {
			status = http.StatusRequestEntityTooLarge
			code = common.ErrInvalidImageSize.Code
		}
		c.JSON(status, gin.H{
			"error": "Invalid image",
			"code":  code,
		})
		return
	}

	rawText, err := h.engine.Recognize(c.Request.Context(), normalized)
	if err != nil {
		common.LogError("文字辨識引擎失敗",
			zap.Error(err),
			zap.String("user_id", user.ID),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "OCR processing failed",
			"code":  common.ErrOCREngineError.Code,
		})
		return
	}

	ingredients := ocrcore.ExtractIngredients(rawText)

	common.LogInfo("OCR completed",
		zap.String("user_id", user.ID),
		zap.Int("text_length", len(rawText)),
		zap.Int("ingredients_found", len(ingredients)),
	)

	c.JSON(http.StatusOK, Response{
		RawText:              rawText,
		ExtractedIngredients: ingredients,
		Confidence:           ocrcore.TextConfidence(rawText),
		ProcessingTime:       time.Since(start).Milliseconds(),
	})
}
