package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Telegram TelegramConfig `yaml:"telegram"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Compiler CompilerConfig `yaml:"compiler"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	SharedSecret      string        `yaml:"shared_secret"` // gates mutating endpoints when set
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // empty disables persistence
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	// DegradedSections is the number of defaulted sections in one conversion
	// at or above which an alert is sent. 0 disables alerting.
	DegradedSections int `yaml:"degraded_sections"`
}

type FetchConfig struct {
	UserAgent string            `yaml:"user_agent"`
	Timeout   time.Duration     `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers"`
	// BrowserFallback enables the headless-browser capture when the plain
	// HTTP response is not JSON.
	BrowserFallback bool          `yaml:"browser_fallback"`
	BrowserTimeout  time.Duration `yaml:"browser_timeout"`
}

type CompilerConfig struct {
	// DefaultSeasonYear is used when the caller supplies no season year.
	// 0 lets timestamp coercion fall back to the current UTC year.
	DefaultSeasonYear int `yaml:"default_season_year"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no config file is supplied:
// local-only serving, no persistence, no alerting.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8787,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:        30 * time.Second,
			BrowserTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
