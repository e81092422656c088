package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              int           `mapstructure:"port"`
	DatabaseURL       string        `mapstructure:"database_url"`
	DBMigrate         bool          `mapstructure:"db_migrate"`
	WordsCSV          string        `mapstructure:"words_csv"`
	WordLookupTimeout time.Duration `mapstructure:"word_lookup_timeout"`
	ChatRate          float64       `mapstructure:"chat_rate"`
	ChatBurst         int           `mapstructure:"chat_burst"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	AllowedOrigin     string        `mapstructure:"allowed_origin"`
	LogLevel          string        `mapstructure:"log_level"`
	LogPretty         bool          `mapstructure:"log_pretty"`
}

var keys = []string{
	"port",
	"database_url",
	"db_migrate",
	"words_csv",
	"word_lookup_timeout",
	"chat_rate",
	"chat_burst",
	"send_buffer",
	"allowed_origin",
	"log_level",
	"log_pretty",
}

// Load reads an optional .env file and then the process environment.
// Keys are the upper-cased field tags: PORT, DATABASE_URL, ...
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("database_url", "")
	v.SetDefault("db_migrate", false)
	v.SetDefault("words_csv", "words.csv")
	v.SetDefault("word_lookup_timeout", "5s")
	v.SetDefault("chat_rate", 2.0)
	v.SetDefault("chat_burst", 5)
	v.SetDefault("send_buffer", 256)
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.WordLookupTimeout <= 0:
		return fmt.Errorf("word_lookup_timeout must be positive, got %s", c.WordLookupTimeout)
	case c.ChatRate <= 0 || c.ChatBurst <= 0:
		return fmt.Errorf("chat rate limit must be positive, got %v/%d", c.ChatRate, c.ChatBurst)
	case c.SendBuffer <= 0:
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	return nil
}
