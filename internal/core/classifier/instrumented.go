package classifier

import (
	"context"
	"time"

	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"
)

// Instrumented 記錄推論次數、延遲與日誌
type Instrumented struct {
	inner   Classifier
	backend string
}

// NewInstrumented 包裝分類器並以 backend 標記指標
func NewInstrumented(inner Classifier, backend string) *Instrumented {
	return &Instrumented{inner: inner, backend: backend}
}

// Unwrap 回傳被包裝的分類器
func (i *Instrumented) Unwrap() Classifier {
	return i.inner
}

// Predict 委派給內層分類器
func (i *Instrumented) Predict(ctx context.Context, batch [][]float64) ([][]int, error) {
	start := time.Now()
	rows, err := i.inner.Predict(ctx, batch)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ClassifierRequestsTotal.WithLabelValues(i.backend, status).Inc()
	metrics.ClassifierDuration.WithLabelValues(i.backend).Observe(duration.Seconds())
	common.LogClassifierCall(i.backend, duration, err, common.RequestIDFromContext(ctx))

	return rows, err
}
