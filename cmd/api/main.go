package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skincare-recommender/internal/api"
	"skincare-recommender/internal/core/cache"
	"skincare-recommender/internal/core/catalog"
	"skincare-recommender/internal/core/classifier"
	"skincare-recommender/internal/core/recommend"
	"skincare-recommender/internal/core/taxonomy"
	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("classifier_backend", cfg.Classifier.Backend),
		zap.Int("expected_feature_length", cfg.Classifier.ExpectedFeatureLength),
		zap.String("catalog", cfg.Catalog.Path),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// 成分結構與商品目錄在啟動時載入一次，之後唯讀
	schema, err := taxonomy.Load(cfg.Schema.Path)
	if err != nil {
		common.LogFatal("Failed to load ingredient schema", zap.Error(err))
	}
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		common.LogFatal("Failed to load product catalog", zap.Error(err))
	}

	// 快取失敗時降級為不快取
	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		common.LogWarn("Prediction cache unavailable, continuing without cache", zap.Error(err))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	pipeline, err := classifier.NewPipeline(cfg.Classifier, store, schema.Version)
	if err != nil {
		common.LogFatal("Failed to initialize classifier", zap.Error(err))
	}
	defer pipeline.Close()

	svc, err := recommend.NewService(pipeline, schema, cat, cfg.Classifier.ExpectedFeatureLength)
	if err != nil {
		common.LogFatal("Failed to initialize recommendation service", zap.Error(err))
	}

	router, stopRouter := api.SetupRouter(cfg, api.Dependencies{
		Service: svc,
		Backend: pipeline.Backend,
		Queue:   pipeline,
		Cache:   pipeline,
	})
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.String("schema_version", schema.Version),
			zap.Int("catalog_size", cat.Len()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
