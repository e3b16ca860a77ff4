package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"   envDefault:"gpt-4o-mini"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"   envDefault:"gemini-2.0-flash"`

	IONetAPIKey  string `env:"IONET_API_KEY"`
	IONetBaseURL string `env:"IONET_BASE_URL" envDefault:"https://api.intelligence.io.solutions/api/v1"`
	IONetModel   string `env:"IONET_MODEL"    envDefault:"deepseek-ai/DeepSeek-V3"`

	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int64   `env:"LLM_MAX_TOKENS"  envDefault:"1500"`

	RateLimitRPM   float64 `env:"RATE_LIMIT_RPM"   envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"1"`

	ChunkSize    int `env:"CHUNK_SIZE"     envDefault:"4000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP"  envDefault:"200"`
	MaxBatchSize int `env:"MAX_BATCH_SIZE" envDefault:"10"`

	DBPath        string `env:"DB_PATH"          envDefault:"db.sqlite"`
	UploadDir     string `env:"UPLOAD_DIR"       envDefault:"uploads"`
	MaxFileSizeMB int64  `env:"MAX_FILE_SIZE_MB" envDefault:"50"`
	MaxPages      int    `env:"MAX_PAGES"        envDefault:"100"`

	ListenAddr    string `env:"LISTEN_ADDR"    envDefault:":8080"`
	RetentionDays int    `env:"RETENTION_DAYS" envDefault:"30"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ChunkSize <= 0 {
		return Config{}, fmt.Errorf("CHUNK_SIZE must be positive (got %d)", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return Config{}, fmt.Errorf(
			"CHUNK_OVERLAP must be in [0, CHUNK_SIZE) (got %d)",
			cfg.ChunkOverlap,
		)
	}
	if cfg.MaxBatchSize < 2 {
		return Config{}, fmt.Errorf("MAX_BATCH_SIZE must be at least 2 (got %d)", cfg.MaxBatchSize)
	}
	if cfg.RateLimitRPM <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPM must be positive (got %v)", cfg.RateLimitRPM)
	}
	if cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be at least 1 (got %d)", cfg.RateLimitBurst)
	}

	return cfg, nil
}

func (c Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}
