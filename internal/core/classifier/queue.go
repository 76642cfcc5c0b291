package classifier

import (
	"context"
	"sync"
	"sync/atomic"

	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// job 隊列請求
type job struct {
	ctx    context.Context
	batch  [][]float64
	result chan jobResult
}

// jobResult 處理結果
type jobResult struct {
	rows [][]int
	err  error
}

// QueueStatus 隊列狀態
type QueueStatus struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Queue 以固定數量的 worker 限制同時推論數；隊列滿時立即拒絕
type Queue struct {
	inner     Classifier
	jobs      chan *job
	workers   int
	maxSize   int
	processed atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue 建立推論隊列並啟動 worker
func NewQueue(inner Classifier, cfg config.QueueConfig) *Queue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1
	}

	q := &Queue{
		inner:   inner,
		jobs:    make(chan *job, maxSize),
		workers: workers,
		maxSize: maxSize,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	common.LogInfo("推論隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return q
}

// Unwrap 回傳被包裝的分類器
func (q *Queue) Unwrap() Classifier {
	return q.inner
}

// Predict 將請求加入隊列並等待結果
func (q *Queue) Predict(ctx context.Context, batch [][]float64) ([][]int, error) {
	j := &job{
		ctx:    ctx,
		batch:  batch,
		result: make(chan jobResult, 1),
	}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, ErrClosed
	}
	select {
	case q.jobs <- j:
		metrics.InferenceQueueDepth.Set(float64(len(q.jobs)))
	default:
		q.mu.RUnlock()
		common.LogWarn("推論隊列已滿", zap.Int("max_queue_size", q.maxSize))
		return nil, ErrQueueFull
	}
	q.mu.RUnlock()

	select {
	case res := <-j.result:
		return res.rows, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		metrics.InferenceQueueDepth.Set(float64(len(q.jobs)))

		// 呼叫端已放棄的請求不再推論
		if err := j.ctx.Err(); err != nil {
			j.result <- jobResult{err: err}
			continue
		}
		rows, err := q.inner.Predict(j.ctx, j.batch)
		q.processed.Add(1)
		j.result <- jobResult{rows: rows, err: err}
	}
}

// Status 獲取隊列狀態
func (q *Queue) Status() QueueStatus {
	return QueueStatus{
		QueueLength:    len(q.jobs),
		ProcessedCount: q.processed.Load(),
		MaxQueueSize:   q.maxSize,
		Workers:        q.workers,
	}
}

// Close 停止接收新請求，等待已排隊的請求處理完畢
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	metrics.InferenceQueueDepth.Set(0)
}
