package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DB"`
	LLM      LLMConfig      `yaml:"llm" envconfig:"LLM"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Alerts   AlertConfig    `yaml:"alerts" envconfig:"ALERTS"`
	Usage    UsageConfig    `yaml:"usage" envconfig:"USAGE"`
	UI       UIConfig       `yaml:"ui" envconfig:"UI"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" split_words:"true"`
	Port           string   `yaml:"port" split_words:"true"`
	Mode           string   `yaml:"mode" split_words:"true"` // debug, release, test
	LogLevel       string   `yaml:"log_level" split_words:"true"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" split_words:"true"`
	RateLimitBurst int      `yaml:"rate_limit_burst" split_words:"true"`
	CORSOrigins    []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" split_words:"true"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn" split_words:"true"`
}

// LLMConfig selects the text generation backend used for enrichment.
// Empty BaseURL and Model fall back to the provider's defaults.
type LLMConfig struct {
	Provider string        `yaml:"provider" split_words:"true"` // groq, openai, azure, anthropic, ollama, gemini
	BaseURL  string        `yaml:"base_url" split_words:"true"`
	APIKey   string        `yaml:"api_key" split_words:"true"`
	Model    string        `yaml:"model" split_words:"true"`
	Timeout  time.Duration `yaml:"timeout" split_words:"true"`
}

// RedisConfig for optional async alert queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" split_words:"true"`
	Addr     string `yaml:"addr" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	DB       int    `yaml:"db" split_words:"true"`
}

// AlertConfig controls notifications for low-rated reviews.
type AlertConfig struct {
	Enabled    bool        `yaml:"enabled" split_words:"true"`
	MaxRating  int         `yaml:"max_rating" split_words:"true"`
	WebhookURL string      `yaml:"webhook_url" split_words:"true"`
	Email      EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	Host     string   `yaml:"host" split_words:"true"`
	Port     int      `yaml:"port" split_words:"true"`
	Username string   `yaml:"username" split_words:"true"`
	Password string   `yaml:"password" split_words:"true"`
	From     string   `yaml:"from" split_words:"true"`
	To       []string `yaml:"to" split_words:"true"`
	UseTLS   bool     `yaml:"use_tls" split_words:"true"`
}

// UsageConfig controls retention of per-call AI usage logs.
type UsageConfig struct {
	RetentionDays int    `yaml:"retention_days" split_words:"true"`
	CleanupCron   string `yaml:"cleanup_cron" split_words:"true"`
}

type UIConfig struct {
	APIBaseURL string `yaml:"api_base_url" split_words:"true"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "5000",
			Mode:           "debug",
			LogLevel:       "info",
			RateLimitRPS:   2,
			RateLimitBurst: 10,
			CORSOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "feedbacklens.db",
		},
		LLM: LLMConfig{
			Provider: "groq",
			Timeout:  30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Alerts: AlertConfig{
			Enabled:   false,
			MaxRating: 2,
			Email: EmailConfig{
				Port:   587,
				UseTLS: true,
			},
		},
		Usage: UsageConfig{
			RetentionDays: 30,
			CleanupCron:   "0 3 * * *",
		},
		UI: UIConfig{
			APIBaseURL: "/api",
		},
	}
}

// overrideFromEnv applies SERVER_*, DB_*, LLM_*, REDIS_*, ALERTS_*, USAGE_*
// and UI_* variables on top of the file values.
func (c *Config) overrideFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if c.LLM.APIKey == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
	return nil
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
