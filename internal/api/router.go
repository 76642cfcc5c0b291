package api

import (
	"context"
	"time"

	"skincare-recommender/internal/api/handlers/health"
	recommendHandler "skincare-recommender/internal/api/handlers/recommend"
	"skincare-recommender/internal/api/middleware"
	"skincare-recommender/internal/core/recommend"
	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// 單一請求的處理上限，含模型推論
	timeoutDuration = 30 * time.Second
	// 背景清理限流與去重紀錄的間隔
	cleanupInterval = 10 * time.Minute
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Service *recommend.Service
	Backend string
	Queue   health.QueueReporter
	Cache   health.CacheReporter
}

// SetupRouter 設置路由；回傳的 stop 用於關閉背景清理協程
func SetupRouter(cfg *config.Config, deps Dependencies) (router *gin.Engine, stop func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router = gin.New()
	var stops []func()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.StartCleanup(cleanupInterval)
		stops = append(stops, limiter.Stop)
		router.Use(middleware.RateLimit(limiter))
	}

	if cfg.DedupWindow > 0 {
		dedup := middleware.NewDeduplicator(cfg.DedupWindow)
		dedup.StartCleanup(cleanupInterval)
		stops = append(stops, dedup.Stop)
		router.Use(middleware.Deduplication(dedup))
	}

	// 設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound, false)
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		common.WriteError(c, common.ErrMethodNotAllowed, false)
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Backend, deps.Service, deps.Queue, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 推薦路由：根路徑與 /api/v1 同時提供
	h := recommendHandler.NewHandler(deps.Service, cfg.App.Debug)
	register := func(g gin.IRoutes) {
		g.POST("/predict", h.HandlePredict)
		g.POST("/filter-products", h.HandleFilterProducts)
		g.GET("/product-types", h.HandleProductTypes)
	}
	register(router)
	register(router.Group("/api/v1"))

	common.LogInfo("Router setup completed successfully",
		zap.String("classifier_backend", deps.Backend),
		zap.String("schema_version", deps.Service.SchemaVersion()),
		zap.Int("catalog_size", deps.Service.CatalogSize()),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, func() {
		for _, s := range stops {
			s()
		}
	}
}
