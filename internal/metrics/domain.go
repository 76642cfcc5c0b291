package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "skincare"

var (
	// RecommendationsTotal 成分推薦次數，依結果分類
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of ingredient recommendations by result",
		},
		[]string{"result"},
	)

	// FilteredProducts 每次篩選命中的商品數
	FilteredProducts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_products",
			Help:      "Number of products matched per filter request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// ClassifierRequestsTotal 模型推論次數
	ClassifierRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_requests_total",
			Help:      "Total number of classifier predictions",
		},
		[]string{"backend", "status"},
	)

	// ClassifierDuration 模型推論延遲
	ClassifierDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_duration_seconds",
			Help:      "Classifier prediction duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend"},
	)

	// CacheLookupsTotal 預測快取查詢次數（hit、miss、error）
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_lookups_total",
			Help:      "Prediction cache lookups by result",
		},
		[]string{"result"},
	)

	// InferenceQueueDepth 等待 worker 的推論請求數
	InferenceQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inference_queue_depth",
			Help:      "Predictions waiting for an inference worker",
		},
	)

	// BreakerState 遠端推論熔斷器狀態：0 關閉、1 半開、2 開啟
	BreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "classifier_breaker_state",
			Help:      "Remote classifier circuit breaker state",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RecommendationsTotal,
		FilteredProducts,
		ClassifierRequestsTotal,
		ClassifierDuration,
		CacheLookupsTotal,
		InferenceQueueDepth,
		BreakerState,
	)
}
