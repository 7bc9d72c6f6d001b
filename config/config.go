package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Lunch    LunchConfig    `yaml:"lunch"`
	Form     FormConfig     `yaml:"form"`
}

// ServerConfig holds the ops HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// TelegramConfig holds the bot transport configuration.
type TelegramConfig struct {
	BotToken             string `yaml:"bot_token"`
	UpdateTimeoutSeconds int    `yaml:"update_timeout_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// LunchConfig drives the reminder/booking schedule. ReminderTime is a 24h
// "HH:MM" wall-clock time in Timezone; Days are the weekdays lunch is served
// on. Reminders go out on the day before each lunch day.
type LunchConfig struct {
	ReminderTime   string        `yaml:"reminder_time"`
	TimeoutMinutes int           `yaml:"reminder_timeout_minutes"`
	Timeout        time.Duration `yaml:"-"` // Derived from TimeoutMinutes
	Days           []string      `yaml:"days"`
	Timezone       string        `yaml:"timezone"`
}

// FormConfig describes the hosted lunch form the booking step drives.
type FormConfig struct {
	URL            string            `yaml:"url"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Form.URL == "" {
		return nil, fmt.Errorf("form.url is required")
	}

	if cfg.Telegram.UpdateTimeoutSeconds <= 0 {
		cfg.Telegram.UpdateTimeoutSeconds = 60
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Lunch.ReminderTime == "" {
		cfg.Lunch.ReminderTime = "07:00"
	}
	if cfg.Lunch.TimeoutMinutes <= 0 {
		cfg.Lunch.TimeoutMinutes = 30
	}
	cfg.Lunch.Timeout = time.Duration(cfg.Lunch.TimeoutMinutes) * time.Minute

	if len(cfg.Lunch.Days) == 0 {
		cfg.Lunch.Days = []string{"tuesday", "wednesday", "thursday"}
	}
	if cfg.Lunch.Timezone == "" {
		cfg.Lunch.Timezone = "UTC"
	}

	if cfg.Form.TimeoutSeconds <= 0 {
		cfg.Form.TimeoutSeconds = 30
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		log.Printf("server.cache_ttl_seconds is not set or invalid; defaulting to 5")
		cfg.Server.CacheTTLSeconds = 5
	}

	return &cfg, nil
}
