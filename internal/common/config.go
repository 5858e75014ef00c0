package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Extract   ExtractConfig
	Inference InferenceConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds the inbound HTTP surface configuration
type ServerConfig struct {
	HTTPAddr            string
	ClientRatePerMinute int // per-client inbound ceiling, 0 disables
	ShutdownTimeout     time.Duration
}

// RedisConfig holds the external key-value cache configuration
type RedisConfig struct {
	URL       string
	ResultTTL time.Duration // completed result envelopes
	StatusTTL time.Duration // transient request status records
}

// ExtractConfig holds extraction backend and source intake configuration
type ExtractConfig struct {
	Pdftotext       string // binary name or absolute path; if empty -> "pdftotext"
	DownloadDir     string // disk cache for URL sources
	DownloadTimeout time.Duration
	MaxFileSizeMB   int64
}

// InferenceConfig holds the hosted text-understanding service configuration
type InferenceConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	RatePerMinute   int // shared external quota, enforced by the sliding limiter
}

// SchedulerConfig holds admission control and worker pool configuration
type SchedulerConfig struct {
	QueueCapacity  int
	EnqueueTimeout time.Duration
	MaxConcurrent  int
	PollInterval   time.Duration
	RequestTimeout time.Duration // budget for one request's whole workflow
	ChunkBudget    int           // max characters handed to the inference call
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:            getEnv("HTTP_ADDR", ":8000"),
			ClientRatePerMinute: getEnvAsInt("CLIENT_RATE_PER_MINUTE", 100),
			ShutdownTimeout:     getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			ResultTTL: getEnvAsDuration("RESULT_TTL", 24*time.Hour),
			StatusTTL: getEnvAsDuration("STATUS_TTL", time.Hour),
		},
		Extract: ExtractConfig{
			Pdftotext:       getEnv("PDFTOTEXT_BIN", "pdftotext"),
			DownloadDir:     getEnv("DOWNLOAD_CACHE_DIR", "./cache"),
			DownloadTimeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
			MaxFileSizeMB:   int64(getEnvAsInt("MAX_FILE_SIZE_MB", 50)),
		},
		Inference: InferenceConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature:     getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			TopP:            getEnvAsFloat32("GEMINI_TOP_P", 0.8),
			TopK:            int32(getEnvAsInt("GEMINI_TOP_K", 40)),
			MaxOutputTokens: int32(getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 4096)),
			RatePerMinute:   getEnvAsInt("API_RATE_PER_MINUTE", 50),
		},
		Scheduler: SchedulerConfig{
			QueueCapacity:  getEnvAsInt("QUEUE_CAPACITY", 1000),
			EnqueueTimeout: getEnvAsDuration("ENQUEUE_TIMEOUT", 5*time.Second),
			MaxConcurrent:  getEnvAsInt("MAX_CONCURRENT", 50),
			PollInterval:   getEnvAsDuration("POLL_INTERVAL", time.Second),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Minute),
			ChunkBudget:    getEnvAsInt("CHUNK_BUDGET", 6000),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for unusable values
func (c *Config) Validate() error {
	if c.Inference.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Scheduler.QueueCapacity <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_CAPACITY must be positive", ErrInvalidInput)
	}
	if c.Scheduler.MaxConcurrent <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_CONCURRENT must be positive", ErrInvalidInput)
	}
	return nil
}
