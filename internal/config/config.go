package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	BotToken   string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	LogLevel   string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile    string `yaml:"log_file" envconfig:"LOG_FILE"`
	HealthAddr string `yaml:"health_addr" envconfig:"HEALTH_ADDR"`

	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`

	AdapterTimeout time.Duration  `yaml:"adapter_timeout" envconfig:"ADAPTER_TIMEOUT"`
	Currency       CurrencyConfig `yaml:"currency"`
	Weather        WeatherConfig  `yaml:"weather"`
	LLM            LLMConfig      `yaml:"llm"`
}

// StorageConfig selects where user state and voice clips live
type StorageConfig struct {
	Driver   string `yaml:"driver" envconfig:"STORE_DRIVER"`
	DataFile string `yaml:"data_file" envconfig:"DATA_FILE"`
	VoiceDir string `yaml:"voice_dir" envconfig:"VOICE_DIR"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" envconfig:"DB_HOST"`
	Port     string `yaml:"port" envconfig:"DB_PORT"`
	Name     string `yaml:"name" envconfig:"DB_NAME"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
}

// CurrencyConfig configures the currencylayer client
type CurrencyConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"EXCHANGE_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"CURRENCY_API_URL"`
}

// WeatherConfig configures the OpenWeatherMap client
type WeatherConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"OPENWEATHER_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"WEATHER_API_URL"`
}

// LLMConfig configures the assistant
type LLMConfig struct {
	Provider     string        `yaml:"provider" envconfig:"LLM_PROVIDER"`
	APIKey       string        `yaml:"api_key" envconfig:"LLM_API_KEY"`
	BaseURL      string        `yaml:"base_url" envconfig:"LLM_BASE_URL"`
	Model        string        `yaml:"model" envconfig:"LLM_MODEL"`
	SystemPrompt string        `yaml:"system_prompt" envconfig:"LLM_SYSTEM_PROMPT"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT"`
	Trigger      string        `yaml:"trigger" envconfig:"ASSISTANT_TRIGGER"`
}

// Load reads configuration from .env, the optional YAML file named by
// BOT_CONFIG and environment variables, in increasing priority
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	return load(os.Getenv("BOT_CONFIG"))
}

func load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getDefault(cfg.LogLevel, "info")))
	cfg.LogFile = getDefault(cfg.LogFile, "bot_log.txt")

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(getDefault(cfg.Storage.Driver, DriverJSON)))
	cfg.Storage.DataFile = getDefault(cfg.Storage.DataFile, "data.json")
	cfg.Storage.VoiceDir = getDefault(cfg.Storage.VoiceDir, "voices")

	cfg.Database.Host = getDefault(cfg.Database.Host, "localhost")
	cfg.Database.Port = getDefault(cfg.Database.Port, "5432")
	cfg.Database.Name = getDefault(cfg.Database.Name, "jarvis")
	cfg.Database.User = getDefault(cfg.Database.User, "jarvis")

	if cfg.AdapterTimeout == 0 {
		cfg.AdapterTimeout = 15 * time.Second
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(getDefault(cfg.LLM.Provider, "openai")))
	cfg.LLM.APIKey = getDefault(cfg.LLM.APIKey, os.Getenv("HF_TOKEN"))
	cfg.LLM.Trigger = getDefault(cfg.LLM.Trigger, "Джарвис")
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
}

// Validate checks required fields and enumerations
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q; allowed: debug, info, warn, error", cfg.LogLevel)
	}

	switch cfg.Storage.Driver {
	case DriverJSON:
	case DriverPostgres:
		if cfg.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORE_DRIVER is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q; allowed: json, postgres", cfg.Storage.Driver)
	}

	if cfg.AdapterTimeout < 0 {
		return fmt.Errorf("ADAPTER_TIMEOUT must be positive")
	}
	if cfg.LLM.Timeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
