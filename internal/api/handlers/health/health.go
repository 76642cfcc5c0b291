package health

import (
	"net/http"
	"runtime"
	"time"

	"skincare-recommender/internal/core/cache"
	"skincare-recommender/internal/core/classifier"
	"skincare-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceInfo 健康檢查需要的服務資訊
type ServiceInfo interface {
	CatalogSize() int
	SchemaVersion() string
}

// QueueReporter 回報推論隊列狀態
type QueueReporter interface {
	QueueStatus() classifier.QueueStatus
}

// CacheReporter 回報預測快取統計；ok 為 false 表示沒有可統計的本地快取
type CacheReporter interface {
	CacheStats() (stats cache.Stats, ok bool)
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status        string                  `json:"status"`
	Timestamp     time.Time               `json:"timestamp"`
	Version       string                  `json:"version"`
	Backend       string                  `json:"classifier_backend"`
	SchemaVersion string                  `json:"schema_version"`
	CatalogSize   int                     `json:"catalog_size"`
	Runtime       map[string]interface{}  `json:"runtime"`
	Queue         *classifier.QueueStatus `json:"queue,omitempty"`
	Cache         *cache.Stats            `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	backend string
	svc     ServiceInfo
	queue   QueueReporter
	cache   CacheReporter
}

// NewHandler 創建健康檢查處理器；queue 與 cache 可為 nil
func NewHandler(version, backend string, svc ServiceInfo, queue QueueReporter, cacheStats CacheReporter) *Handler {
	return &Handler{version: version, backend: backend, svc: svc, queue: queue, cache: cacheStats}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now(),
		Version:       h.version,
		Backend:       h.backend,
		SchemaVersion: h.svc.SchemaVersion(),
		CatalogSize:   h.svc.CatalogSize(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		status := h.queue.QueueStatus()
		response.Queue = &status
	}
	if h.cache != nil {
		if stats, ok := h.cache.CacheStats(); ok {
			response.Cache = &stats
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：隊列滿載時回 503，讓負載平衡器暫時移出
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue != nil {
		status := h.queue.QueueStatus()
		if status.QueueLength >= status.MaxQueueSize {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "busy",
				"queue":  status,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"catalog_size": h.svc.CatalogSize(),
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
