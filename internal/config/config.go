// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "configs/config.yaml"
	DefaultAIModel    = "llama-3.3-70b-versatile"
	DefaultAIBaseURL  = "https://api.groq.com/openai/v1"
)

// DefaultSchedules fires at 02:00, 04:00 and 06:00
var DefaultSchedules = []string{"0 2 * * *", "0 4 * * *", "0 6 * * *"}

type Config struct {
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	HTTPPort    string `yaml:"http_port" env:"HTTP_PORT"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`

	//AI classifier. Empty key means keyword fallback only
	GroqAPIKey string `yaml:"-" env:"GROQ_API_KEY"`
	AIModel    string `yaml:"ai_model" env:"AI_MODEL"`
	AIBaseURL  string `yaml:"ai_base_url" env:"AI_BASE_URL"`

	//Scheduling
	Schedules []string `yaml:"schedules" env:"SCHEDULES"`
	Timezone  string   `yaml:"timezone" env:"TIMEZONE"`

	//Browser
	Headless      bool   `yaml:"headless" env:"HEADLESS"`
	CookiesPath   string `yaml:"cookies_path" env:"COOKIES_PATH"`
	ScreenshotDir string `yaml:"screenshot_dir" env:"SCREENSHOT_DIR"`

	//Optional batch reports
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
}

// Load reads .env and the YAML file at path (missing file is fine),
// applies env overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Headless: true}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		log.Printf("ℹ️ No config file at %s, using env and defaults", path)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("HTTP_PORT", &cfg.HTTPPort)
	setString("FRONTEND_URL", &cfg.FrontendURL)
	setString("GROQ_API_KEY", &cfg.GroqAPIKey)
	setString("AI_MODEL", &cfg.AIModel)
	setString("AI_BASE_URL", &cfg.AIBaseURL)
	setString("TIMEZONE", &cfg.Timezone)
	setString("COOKIES_PATH", &cfg.CookiesPath)
	setString("SCREENSHOT_DIR", &cfg.ScreenshotDir)
	setString("TELEGRAM_BOT_TOKEN", &cfg.TelegramToken)

	if s := os.Getenv("SCHEDULES"); s != "" {
		cfg.Schedules = splitList(s)
	}

	if s := os.Getenv("HEADLESS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("HEADLESS must be a boolean, got %q", s)
		}
		cfg.Headless = v
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:3000"
	}
	if cfg.AIModel == "" {
		cfg.AIModel = DefaultAIModel
	}
	if cfg.AIBaseURL == "" {
		cfg.AIBaseURL = DefaultAIBaseURL
	}
	if len(cfg.Schedules) == 0 {
		cfg.Schedules = append([]string(nil), DefaultSchedules...)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "logs/screenshots"
	}
}

// Validate checks fields that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireDatabase is checked by commands that touch storage
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Location resolves the scheduler timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
