package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrBreakerOpen 遠端推論服務熔斷中
var ErrBreakerOpen = errors.New("remote classifier circuit is open")

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]int `json:"predictions"`
}

// RemoteClassifier 透過 HTTP 呼叫外部推論服務
type RemoteClassifier struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[[][]int]
}

// NewRemoteClassifier 建立遠端分類器
func NewRemoteClassifier(cfg config.RemoteConfig, bc config.BreakerConfig) *RemoteClassifier {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	threshold := bc.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "remote-classifier",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(breakerStateValue(to))
			common.LogWarn("熔斷器狀態變更",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// 呼叫端取消不算服務故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	metrics.BreakerState.Set(0)

	return &RemoteClassifier{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[][]int](settings),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Predict 送出特徵批次並讀回標籤
func (r *RemoteClassifier) Predict(ctx context.Context, batch [][]float64) ([][]int, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	rows, err := r.breaker.Execute(func() ([][]int, error) {
		return r.call(ctx, batch)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrBreakerOpen, err)
		}
		return nil, err
	}
	return rows, nil
}

func (r *RemoteClassifier) call(ctx context.Context, batch [][]float64) ([][]int, error) {
	body, err := common.MarshalJSON(predictRequest{Instances: batch})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/predict")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to inference service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result predictResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}
	if len(result.Predictions) != len(batch) {
		return nil, fmt.Errorf("inference service returned %d predictions for %d instances",
			len(result.Predictions), len(batch))
	}
	return result.Predictions, nil
}

// State 熔斷器目前狀態
func (r *RemoteClassifier) State() gobreaker.State {
	return r.breaker.State()
}
