/*
Package configs loads the service configuration from environment variables and
an optional .env file in the working directory. Environment variables win over
the file.
*/
package configs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"

	DefaultEnvFile = ".env"
)

// Summary store kinds.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// AppConfig contains every setting the service reads at startup.
type AppConfig struct {
	// General Server Settings
	Environment string `mapstructure:"environment"`
	Port        int    `mapstructure:"port"`

	// Security Settings
	AllowedOrigins   []string `mapstructure:"-"`
	LiveKitAPIKey    string   `mapstructure:"livekit_api_key"`
	LiveKitAPISecret string   `mapstructure:"livekit_api_secret"`
	LiveKitHost      string   `mapstructure:"livekit_host"`

	// Summarizer Settings
	SummarizerAPIKey  string        `mapstructure:"summarizer_api_key"`
	SummarizerBaseURL string        `mapstructure:"summarizer_base_url"`
	SummarizerModel   string        `mapstructure:"summarizer_model"`
	SummarizerTimeout time.Duration `mapstructure:"summarizer_timeout"`

	// Summary Store Settings
	SummaryStore      string        `mapstructure:"summary_store"`
	SummaryTTL        time.Duration `mapstructure:"summary_ttl"`
	SummaryMaxEntries int           `mapstructure:"summary_max_entries"`
	DatabaseURL       string        `mapstructure:"database_url"`
	RedisURL          string        `mapstructure:"redis_url"`

	// S3 Archive Settings
	S3BucketName      string `mapstructure:"s3_bucket_name"`
	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3Region          string `mapstructure:"s3_region"`

	AudioBaseURL string `mapstructure:"audio_base_url"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// SummarizerEnabled reports whether a provider credential is configured.
func (c *AppConfig) SummarizerEnabled() bool {
	return c.SummarizerAPIKey != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("port", 8000)
	v.SetDefault("allowed_origins", "")

	v.SetDefault("livekit_api_key", "")
	v.SetDefault("livekit_api_secret", "")
	v.SetDefault("livekit_host", "")

	v.SetDefault("summarizer_api_key", "")
	v.SetDefault("groq_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("summarizer_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("summarizer_model", "llama-3.1-8b-instant")
	v.SetDefault("summarizer_timeout", "15s")

	v.SetDefault("summary_store", StoreMemory)
	v.SetDefault("summary_ttl", "24h")
	v.SetDefault("summary_max_entries", 10000)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")

	v.SetDefault("s3_bucket_name", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("s3_region", "auto")

	v.SetDefault("audio_base_url", "https://example.com/audio")
}

// LoadConfig reads the configuration from the environment and ./.env.
func LoadConfig() (*AppConfig, error) {
	return Load(DefaultEnvFile)
}

// Load reads the configuration from the environment and envFile, which may be
// empty or missing.
func Load(envFile string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" && fileExists(envFile) {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.SummaryStore = strings.ToLower(strings.TrimSpace(cfg.SummaryStore))
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	if cfg.SummarizerAPIKey == "" {
		cfg.SummarizerAPIKey = v.GetString("groq_api_key")
	}
	if cfg.SummarizerAPIKey == "" {
		cfg.SummarizerAPIKey = v.GetString("openai_api_key")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the allowed range (%d-%d)", c.Port, 1024, 65535)
	}

	if c.SummarizerTimeout <= 0 {
		return fmt.Errorf("SUMMARIZER_TIMEOUT must be positive, got %s", c.SummarizerTimeout)
	}
	if c.SummaryTTL < 0 {
		return fmt.Errorf("SUMMARY_TTL must not be negative, got %s", c.SummaryTTL)
	}
	if c.SummaryMaxEntries < 0 {
		return fmt.Errorf("SUMMARY_MAX_ENTRIES must not be negative, got %d", c.SummaryMaxEntries)
	}

	switch c.SummaryStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is required when SUMMARY_STORE=postgres")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL environment variable is required when SUMMARY_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown SUMMARY_STORE %q (want memory, postgres or redis)", c.SummaryStore)
	}

	if !c.IsDevelopment() {
		if c.LiveKitAPIKey == "" || c.LiveKitAPISecret == "" {
			return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET environment variables are required in %s environment", c.Environment)
		}
	}

	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
