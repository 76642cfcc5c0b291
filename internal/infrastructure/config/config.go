package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Schema      SchemaConfig     `mapstructure:"schema"`
	Classifier  ClassifierConfig `mapstructure:"classifier"`
	Cache       CacheConfig      `mapstructure:"cache"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error fatal"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name" validate:"required"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"min=1"`
}

// CatalogConfig 商品資料來源
type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchemaConfig 成分分類結構檔；Path 為空時使用內建版本
type SchemaConfig struct {
	Path string `mapstructure:"path"`
}

// ClassifierConfig 分類模型設定
type ClassifierConfig struct {
	Backend               string        `mapstructure:"backend" validate:"oneof=onnx remote"`
	ExpectedFeatureLength int           `mapstructure:"expected_feature_length" validate:"min=1"`
	ONNX                  ONNXConfig    `mapstructure:"onnx"`
	Remote                RemoteConfig  `mapstructure:"remote"`
	Breaker               BreakerConfig `mapstructure:"breaker"`
	Queue                 QueueConfig   `mapstructure:"queue"`
}

// ONNXConfig 本地模型檔設定
type ONNXConfig struct {
	ModelPath   string  `mapstructure:"model_path"`
	LibraryPath string  `mapstructure:"library_path"`
	OutputName  string  `mapstructure:"output_name"`
	OutputKind  string  `mapstructure:"output_kind" validate:"oneof=label score"`
	Threshold   float64 `mapstructure:"threshold" validate:"gt=0,lt=1"`
	Threads     int     `mapstructure:"threads" validate:"min=1"`
}

// RemoteConfig 遠端推論服務設定
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BreakerConfig 熔斷器設定
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold" validate:"min=1"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// QueueConfig 推論隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1"`
	MaxSize int `mapstructure:"max_size" validate:"min=1"`
}

// CacheConfig 預測結果快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend" validate:"oneof=memory redis"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時僅使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("catalog.path", "CATALOG_PATH")
	_ = v.BindEnv("schema.path", "SCHEMA_PATH")
	_ = v.BindEnv("classifier.backend", "CLASSIFIER_BACKEND")
	_ = v.BindEnv("classifier.expected_feature_length", "EXPECTED_FEATURE_LENGTH")
	_ = v.BindEnv("classifier.onnx.model_path", "MODEL_PATH")
	_ = v.BindEnv("classifier.onnx.library_path", "ONNXRUNTIME_LIB")
	_ = v.BindEnv("classifier.remote.base_url", "INFERENCE_URL")
	_ = v.BindEnv("classifier.remote.api_key", "INFERENCE_API_KEY")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"classifier_backend:", v.GetString("classifier.backend"),
		"inference_api_key:", maskAPIKey(v.GetString("classifier.remote.api_key")),
		"catalog:", v.GetString("catalog.path"),
	)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "skincare-recommender")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	v.SetDefault("catalog.path", "datasheet.csv")
	v.SetDefault("schema.path", "")

	// 分類模型設定
	v.SetDefault("classifier.backend", "onnx")
	v.SetDefault("classifier.expected_feature_length", 15)
	v.SetDefault("classifier.onnx.model_path", "models/final_model.onnx")
	v.SetDefault("classifier.onnx.library_path", "")
	v.SetDefault("classifier.onnx.output_name", "")
	v.SetDefault("classifier.onnx.output_kind", "label")
	v.SetDefault("classifier.onnx.threshold", 0.5)
	v.SetDefault("classifier.onnx.threads", 2)
	v.SetDefault("classifier.remote.base_url", "http://localhost:9000")
	v.SetDefault("classifier.remote.timeout", "10s")
	v.SetDefault("classifier.breaker.failure_threshold", 5)
	v.SetDefault("classifier.breaker.max_requests", 1)
	v.SetDefault("classifier.breaker.interval", "60s")
	v.SetDefault("classifier.breaker.timeout", "30s")
	v.SetDefault("classifier.queue.workers", 4)
	v.SetDefault("classifier.queue.max_size", 100)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 10000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "0s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	switch config.Classifier.Backend {
	case "onnx":
		if config.Classifier.ONNX.ModelPath == "" {
			return fmt.Errorf("onnx model path is required")
		}
	case "remote":
		if config.Classifier.Remote.BaseURL == "" {
			return fmt.Errorf("remote classifier base url is required")
		}
		if config.Classifier.Remote.Timeout <= 0 {
			return fmt.Errorf("invalid remote classifier timeout")
		}
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.Backend == "memory" {
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		}
		if config.Cache.Backend == "redis" && config.Cache.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required")
		}
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	return nil
}
