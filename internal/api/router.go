package api

import (
	"time"

	"recipema/internal/api/handlers/health"
	ocrHandler "recipema/internal/api/handlers/ocr"
	recipeHandler "recipema/internal/api/handlers/recipe"
	"recipema/internal/api/middleware"
	"recipema/internal/core/ai/deepseek"
	"recipema/internal/core/cache"
	imagesvc "recipema/internal/core/image"
	ocrcore "recipema/internal/core/ocr"
	recipecore "recipema/internal/core/recipe"
	"recipema/internal/infrastructure/config"
	"recipema/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store cache.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Image.MaxSizeBytes))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求去重（預設關閉）
	if cfg.DedupWindow > 0 {
		router.Use(middleware.Deduplication(cfg.DedupWindow))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("model", cfg.DeepSeek.Model),
		zap.Duration("llm_timeout", cfg.DeepSeek.Timeout),
	)

	// 初始化服務
	chatClient := deepseek.NewClient(&cfg.DeepSeek)
	generator := recipecore.NewService(chatClient, storeOrNil(store), cfg)
	imageService := imagesvc.NewService(cfg.Image.MaxSizeBytes)
	ocrEngine := ocrcore.NewRemoteEngine(&cfg.OCR)

	// 設置配置與快取到 context，健康檢查會用到
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		if store != nil {
			c.Set("cache_store", store)
		}
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組（需通過認證，匿名可用）
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Auth.JWTSecret))
	{
		recipeHandlerInstance := recipeHandler.NewHandler(generator)
		recipeGroup := api.Group("/recipes")
		{
			// 食譜生成
			recipeGroup.POST("/generate", recipeHandlerInstance.HandleGenerate)

			// 食譜歷史
			recipeGroup.GET("/history", recipeHandlerInstance.HandleHistory)
		}

		// 圖片文字辨識
		ocrHandlerInstance := ocrHandler.NewHandler(ocrEngine, imageService)
		api.POST("/ocr", ocrHandlerInstance.HandleRecognize)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("cache_store_initialized", store != nil),
		zap.Int64("max_body_size", cfg.Image.MaxSizeBytes),
	)

	return router, nil
}

// storeOrNil 把具型別的 nil Store 轉成介面 nil，避免 orchestrator 誤判快取可用
func storeOrNil(store cache.Store) recipecore.CacheStore {
	if store == nil {
		return nil
	}
	return store
}
