// Package config loads CLI settings from the environment, an optional .env
// file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TEMPMAIL_BASE_URL.
const EnvPrefix = "tempmail"

// DefaultSessionFile is where the CLI keeps the current session.
const DefaultSessionFile = ".tempmail-session.json"

// LogConfig defines logging settings.
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder instead of JSON
	File        string // optional rotated log file
}

// Config is the root CLI configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration // wait budget
	CheckInterval  time.Duration // sleep between polls
	RequestTimeout time.Duration // per HTTP request
	SessionFile    string
	RateLimit      float64 // requests per second, 0 disables
	RateBurst      int
	MetricsAddr    string // serve /metrics here when non-empty
	Log            LogConfig
}

// Load reads configuration with this precedence, highest first:
//  1. environment variables (TEMPMAIL_*)
//  2. .env in the working directory
//  3. the config file at path, when path is non-empty
//  4. defaults
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", "https://web2.temp-mail.org")
	v.SetDefault("timeout", "60s")
	v.SetDefault("check_interval", "1s")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("session_file", DefaultSessionFile)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", true)
	v.SetDefault("log.file", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	timeout, err := positiveDuration(v, "timeout")
	if err != nil {
		return nil, err
	}
	checkInterval, err := positiveDuration(v, "check_interval")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := positiveDuration(v, "request_timeout")
	if err != nil {
		return nil, err
	}

	rateLimit := v.GetFloat64("rate_limit")
	if rateLimit < 0 {
		return nil, errors.New("rate_limit must not be negative")
	}
	rateBurst := v.GetInt("rate_burst")
	if rateBurst <= 0 {
		rateBurst = 1
	}

	baseURL := strings.TrimSpace(v.GetString("base_url"))
	if baseURL == "" {
		return nil, errors.New("base_url must not be empty")
	}

	return &Config{
		BaseURL:        baseURL,
		Timeout:        timeout,
		CheckInterval:  checkInterval,
		RequestTimeout: requestTimeout,
		SessionFile:    v.GetString("session_file"),
		RateLimit:      rateLimit,
		RateBurst:      rateBurst,
		MetricsAddr:    v.GetString("metrics_addr"),
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
		},
	}, nil
}

func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

// loadEnvFile loads .env from the working directory, then from its parent.
// Missing files are ignored and existing variables are never overwritten.
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
