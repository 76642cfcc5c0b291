package cache

import (
	"context"
	"errors"
	"fmt"

	"skincare-recommender/internal/infrastructure/config"
)

var (
	// ErrCacheMiss 快取未命中
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheFull 快取已滿且無法淘汰
	ErrCacheFull = errors.New("cache is full")
)

// Store 預測結果快取
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// NewStore 依設定建立快取；未啟用時回傳 nil
func NewStore(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "memory", "":
		return NewManager(cfg), nil
	case "redis":
		s, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
