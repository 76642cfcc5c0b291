package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"skincare-recommender/internal/core/cache"
	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Cached 以特徵向量、成分結構版本與模型識別為鍵快取預測結果。
// 快取讀寫失敗只記錄日誌，不影響推論。
type Cached struct {
	inner   Classifier
	store   cache.Store
	version string
	model   string
}

// NewCached 包裝分類器；model 識別模型來源（見 ModelID），store 為 nil 時直接回傳原分類器
func NewCached(inner Classifier, store cache.Store, schemaVersion, model string) Classifier {
	if store == nil {
		return inner
	}
	return &Cached{inner: inner, store: store, version: schemaVersion, model: model}
}

// ModelID 後端加上模型路徑或服務位址；更換模型檔即換一組快取鍵
func ModelID(cfg config.ClassifierConfig) string {
	switch cfg.Backend {
	case "onnx":
		return cfg.Backend + ":" + cfg.ONNX.ModelPath
	case "remote":
		return cfg.Backend + ":" + strings.TrimRight(cfg.Remote.BaseURL, "/")
	default:
		return cfg.Backend
	}
}

// Unwrap 回傳被包裝的分類器
func (c *Cached) Unwrap() Classifier {
	return c.inner
}

// Predict 先查快取，未命中時呼叫模型並寫回
func (c *Cached) Predict(ctx context.Context, batch [][]float64) ([][]int, error) {
	key := CacheKey(c.version, c.model, batch)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var rows [][]int
		if perr := common.ParseJSONBytes(data, &rows); perr == nil && len(rows) == len(batch) {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			common.LogCacheHit("prediction")
			return rows, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		common.LogWarn("快取內容無法解析", zap.String("key", key))
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		common.LogCacheMiss("prediction")
	default:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		common.LogWarn("快取讀取失敗", zap.Error(err))
	}

	rows, err := c.inner.Predict(ctx, batch)
	if err != nil {
		return nil, err
	}

	if data, err := common.MarshalJSON(rows); err == nil {
		if err := c.store.Set(ctx, key, data); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}
	return rows, nil
}

// CacheKey 模型識別與特徵批次的 SHA-256 雜湊，前綴成分結構版本
func CacheKey(version, model string, batch [][]float64) string {
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	b.WriteString(model)
	for _, row := range batch {
		b.WriteByte('|')
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	hash := sha256.Sum256([]byte(b.String()))
	return version + ":" + hex.EncodeToString(hash[:])
}
