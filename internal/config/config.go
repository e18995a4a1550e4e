package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/trendpulse/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Data      DataConfig      `mapstructure:"data"`
	Platforms PlatformsConfig `mapstructure:"platforms"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	News      NewsConfig      `mapstructure:"news"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	APIKey       string        `mapstructure:"api_key"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DataConfig locates the snapshot files.
type DataConfig struct {
	Source         string        `mapstructure:"source"` // "localfs" or "s3"
	Path           string        `mapstructure:"path"`   // For localfs
	S3             S3Config      `mapstructure:"s3"`     // For S3
	Watch          bool          `mapstructure:"watch"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// PlatformsConfig maps the platform names clients send to snapshot keys.
// Nil aliases fall back to the built-in table.
type PlatformsConfig struct {
	Aliases map[string]string `mapstructure:"aliases"`
}

type YouTubeConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Region            string        `mapstructure:"region"`
	MaxResults        int           `mapstructure:"max_results"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CatalogPrefix     string        `mapstructure:"catalog_prefix"`
}

// NewsConfig selects the headline source. Provider "static" serves Items
// instead of calling Google News.
type NewsConfig struct {
	Provider string          `mapstructure:"provider"`
	Items    []NewsItemConfig `mapstructure:"items"`
	BaseURL  string          `mapstructure:"base_url"`
	Limit    int             `mapstructure:"limit"`
	CacheTTL time.Duration   `mapstructure:"cache_ttl"`
	Timeout  time.Duration   `mapstructure:"timeout"`
}

type NewsItemConfig struct {
	Title   string `mapstructure:"title"`
	Link    string `mapstructure:"link"`
	PubDate string `mapstructure:"pub_date"`
	Source  string `mapstructure:"source"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.applyEnv()

	return cfg, nil
}

// applyEnv fills secrets the config file left empty from their
// conventional environment variables.
func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.Server.APIKey == "" {
		c.Server.APIKey = os.Getenv("TRENDPULSE_API_KEY")
	}
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			CORSOrigins:  []string{"*"},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Data: DataConfig{
			Source:         "localfs",
			Path:           "data",
			Watch:          true,
			ReloadInterval: 5 * time.Minute,
		},
		YouTube: YouTubeConfig{
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			Region:            "KR",
			MaxResults:        3,
			RequestsPerSecond: 5,
			Timeout:           10 * time.Second,
			CatalogPrefix:     "youtube_videos",
		},
		News: NewsConfig{
			Provider: "google",
			BaseURL:  "https://news.google.com/rss/search",
			Limit:    5,
			CacheTTL: 10 * time.Minute,
			Timeout:  10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
	cfg.applyEnv()
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	// Data source validation
	switch c.Data.Source {
	case "", "localfs":
		if c.Data.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.path required for localfs source"))
		}
	case "s3":
		if c.Data.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.s3.bucket required for s3 source"))
		}
		if c.Data.ReloadInterval < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("reload_interval cannot be negative, got %s", c.Data.ReloadInterval))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown data source %q", c.Data.Source))
	}

	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("youtube max_results must be between 1 and 50, got %d", c.YouTube.MaxResults))
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("youtube requests_per_second cannot be negative, got %f", c.YouTube.RequestsPerSecond))
	}
	switch c.News.Provider {
	case "", "google", "static":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown news provider %q", c.News.Provider))
	}
	if c.News.Limit < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("news limit must be positive, got %d", c.News.Limit))
	}

	// LLM validation - if provider set, check config exists
	if provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider)); provider != "" {
		switch provider {
		case "none":
		case "claude", "anthropic":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" && c.LLM.OpenAI.BaseURL == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key or base_url required when provider is openai"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
		}
	}

	return nil
}
