package classifier

import (
	"fmt"

	"skincare-recommender/internal/core/cache"
	"skincare-recommender/internal/infrastructure/config"
)

// Pipeline 組裝完成的推論鏈：快取 -> 隊列 -> 指標 -> 模型
type Pipeline struct {
	Classifier
	Backend string

	queue *Queue
	onnx  *ONNXClassifier
	store cache.Store
}

// NewPipeline 依設定建立模型與中介層
func NewPipeline(cfg config.ClassifierConfig, store cache.Store, schemaVersion string) (*Pipeline, error) {
	var base Classifier
	p := &Pipeline{Backend: cfg.Backend, store: store}

	switch cfg.Backend {
	case "onnx":
		onnx, err := NewONNXClassifier(cfg.ONNX)
		if err != nil {
			return nil, err
		}
		p.onnx = onnx
		base = onnx
	case "remote":
		base = NewRemoteClassifier(cfg.Remote, cfg.Breaker)
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}

	p.queue = NewQueue(NewInstrumented(base, cfg.Backend), cfg.Queue)
	p.Classifier = NewCached(p.queue, store, schemaVersion, ModelID(cfg))
	return p, nil
}

// Unwrap 回傳鏈中最外層的分類器
func (p *Pipeline) Unwrap() Classifier {
	return p.Classifier
}

// QueueStatus 推論隊列狀態
func (p *Pipeline) QueueStatus() QueueStatus {
	return p.queue.Status()
}

// CacheStats 本地快取統計；未啟用或使用 Redis 時 ok 為 false
func (p *Pipeline) CacheStats() (cache.Stats, bool) {
	m, ok := p.store.(*cache.Manager)
	if !ok || m == nil {
		return cache.Stats{}, false
	}
	return m.GetStats(), true
}

// Close 依序關閉隊列與模型
func (p *Pipeline) Close() error {
	p.queue.Close()
	if p.onnx != nil {
		return p.onnx.Close()
	}
	return nil
}
