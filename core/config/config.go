package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram transport settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// TourvisorConfig holds credentials and tuning for the tour search backend.
type TourvisorConfig struct {
	BaseURL  string `yaml:"base_url" envconfig:"TOURVISOR_BASE_URL"`
	Login    string `yaml:"login" envconfig:"TOURVISOR_LOGIN"`
	Password string `yaml:"password" envconfig:"TOURVISOR_PASS"`
	// PollIntervalSeconds is the delay between status polls; 0 -> 5s.
	PollIntervalSeconds int `yaml:"poll_interval_seconds" envconfig:"TOURVISOR_POLL_INTERVAL_SECONDS"`
	// MaxWaitSeconds bounds the total status-polling time per search; 0 -> 60s.
	MaxWaitSeconds int `yaml:"max_wait_seconds" envconfig:"TOURVISOR_MAX_WAIT_SECONDS"`
}

// PollInterval returns the effective status poll interval.
func (c TourvisorConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// MaxWait returns the effective total polling budget per search.
func (c TourvisorConfig) MaxWait() time.Duration {
	if c.MaxWaitSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

// OpenAIConfig holds settings for the chat-completion service.
// An empty APIKey disables free-form replies and the AI country fallback.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"OPENAI_BASE_URL"`
	APIKey  string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	Model   string `yaml:"model" envconfig:"OPENAI_MODEL"`
}

// DatabaseConfig holds optional Postgres settings for the search history store.
// An empty Host disables the store entirely.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Enabled reports whether a database is configured at all.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Tourvisor TourvisorConfig `yaml:"tourvisor"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
	}

	if strings.TrimSpace(cfg.Tourvisor.BaseURL) == "" {
		cfg.Tourvisor.BaseURL = "http://tourvisor.ru/xml"
	}
	cfg.Tourvisor.BaseURL = strings.TrimRight(cfg.Tourvisor.BaseURL, "/")
	if strings.TrimSpace(cfg.Tourvisor.Login) == "" || strings.TrimSpace(cfg.Tourvisor.Password) == "" {
		return fmt.Errorf("tourvisor.login and tourvisor.password are required")
	}
	if cfg.Tourvisor.PollIntervalSeconds < 0 {
		return fmt.Errorf("tourvisor.poll_interval_seconds must be >= 0")
	}
	if cfg.Tourvisor.MaxWaitSeconds < 0 {
		return fmt.Errorf("tourvisor.max_wait_seconds must be >= 0")
	}

	if strings.TrimSpace(cfg.OpenAI.BaseURL) == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	cfg.OpenAI.BaseURL = strings.TrimRight(cfg.OpenAI.BaseURL, "/")
	if strings.TrimSpace(cfg.OpenAI.Model) == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}

	if cfg.Database.Enabled() {
		if strings.TrimSpace(cfg.Database.Port) == "" {
			cfg.Database.Port = "5432"
		}
		if strings.TrimSpace(cfg.Database.SSLMode) == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 4
		}
		if strings.TrimSpace(cfg.Database.User) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.user and database.name are required when database.host is set")
		}
	}

	return nil
}
