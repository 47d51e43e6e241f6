package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"zion/gateway/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModuleConfig scopes calendar aggregation for one application module
type ModuleConfig struct {
	Color             string             `yaml:"color"`
	AllowedGroupTypes []models.GroupType `yaml:"allowed_group_types"`
}

type modulesFile struct {
	Modules map[string]ModuleConfig `yaml:"modules"`
}

// Config holds the gateway settings
type Config struct {
	Port        string
	AllowOrigin string
	LogLevel    string
	JWTSecret   string
	DatabaseURL string

	UpstreamURL     string
	UpstreamTimeout time.Duration
	UpstreamRetries int

	FeedPageSize         int
	CalendarFanoutLimit  int
	CalendarGroupTimeout time.Duration
	CalendarLocation     *time.Location

	SessionTTL       time.Duration
	SecureCookies    bool
	WorkspaceIdleTTL time.Duration

	Modules map[string]ModuleConfig
}

// DefaultModules is used when no modules file is present
func DefaultModules() map[string]ModuleConfig {
	return map[string]ModuleConfig{
		"family": {
			Color:             "#059669",
			AllowedGroupTypes: []models.GroupType{models.GroupTypeFamily, models.GroupTypeRelatives, models.GroupTypeCustom},
		},
	}
}

// Load reads .env (if any), the environment and the modules file
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		AllowOrigin:          getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		UpstreamURL:          strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		UpstreamTimeout:      getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRetries:      getEnvAsInt("UPSTREAM_RETRIES", 3),
		FeedPageSize:         getEnvAsInt("FEED_PAGE_SIZE", 20),
		CalendarFanoutLimit:  getEnvAsInt("CALENDAR_FANOUT_LIMIT", 4),
		CalendarGroupTimeout: getEnvAsDuration("CALENDAR_GROUP_TIMEOUT", 8*time.Second),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		SecureCookies:        getEnvAsBool("COOKIE_SECURE", false),
		WorkspaceIdleTTL:     getEnvAsDuration("WORKSPACE_IDLE_TTL", 30*time.Minute),
	}

	loc, err := time.LoadLocation(getEnv("CALENDAR_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("calendar timezone: %w", err)
	}
	cfg.CalendarLocation = loc

	modules, err := LoadModules(getEnv("MODULES_FILE", "config/modules.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Modules = modules

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadModules decodes the modules file, falling back to DefaultModules when it does not exist
func LoadModules(path string) (map[string]ModuleConfig, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultModules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open modules file: %w", err)
	}
	defer f.Close()

	var mf modulesFile
	if err := yaml.NewDecoder(f).Decode(&mf); err != nil {
		return nil, fmt.Errorf("parse modules file: %w", err)
	}
	if len(mf.Modules) == 0 {
		return DefaultModules(), nil
	}
	return mf.Modules, nil
}

// Validate checks the settings the gateway cannot run without
func (c *Config) Validate() error {
	if c.UpstreamURL == "" {
		return errors.New("BACKEND_URL is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.FeedPageSize < 1 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive, got %d", c.FeedPageSize)
	}
	if c.CalendarFanoutLimit < 1 {
		return fmt.Errorf("CALENDAR_FANOUT_LIMIT must be positive, got %d", c.CalendarFanoutLimit)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultVal
}
