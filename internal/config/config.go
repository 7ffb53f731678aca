package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// StoreKind selects the record store backend.
type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

const (
	DefaultPort        = "5050"
	DefaultTimezone    = "Asia/Kolkata"
	DefaultSubmitRate  = 1.0
	DefaultSubmitBurst = 5
)

var (
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required when RECORD_STORE=postgres")
	ErrMissingHierarchyPath = errors.New("HIERARCHY_PATH is required")
)

// Config holds the service configuration.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	Store       StoreKind

	// Reference workbook
	HierarchyPath   string
	HierarchySheet  string
	HierarchySchema string

	AllowedOrigins []string
	AdminKeyHash   string

	SubmitRate  rate.Limit
	SubmitBurst int

	EnforceTimeOrder bool
	Timezone         string
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT: listen port (default: 5050)
//   - APP_ENV: "development" or "production" (default: production)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - DATABASE_URL: Postgres DSN
//   - RECORD_STORE: "postgres" or "memory" (default: postgres)
//   - HIERARCHY_PATH: reference workbook (.xlsx, .xlsm or .csv)
//   - HIERARCHY_SHEET: sheet name (default: first sheet)
//   - HIERARCHY_SCHEMA: YAML file overriding the column aliases
//   - ALLOWED_ORIGINS: comma separated CORS allow-list
//   - ADMIN_KEY_HASH: bcrypt hash of the admin key; admin routes are off when empty
//   - SUBMIT_RATE, SUBMIT_BURST: per-IP submission limit (default: 1/s, burst 5)
//   - ENFORCE_TIME_ORDER: restart must be after shutdown (default: true)
//   - TIMEZONE: zone used for application numbers (default: Asia/Kolkata)
func LoadFromEnv() Config {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = DefaultPort
	}

	var store StoreKind
	switch strings.ToLower(strings.TrimSpace(os.Getenv("RECORD_STORE"))) {
	case "memory":
		store = StoreMemory
	default:
		store = StorePostgres
	}

	tz := strings.TrimSpace(os.Getenv("TIMEZONE"))
	if tz == "" {
		tz = DefaultTimezone
	}

	return Config{
		Port:             port,
		Env:              strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
		LogLevel:         strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Store:            store,
		HierarchyPath:    strings.TrimSpace(os.Getenv("HIERARCHY_PATH")),
		HierarchySheet:   strings.TrimSpace(os.Getenv("HIERARCHY_SHEET")),
		HierarchySchema:  strings.TrimSpace(os.Getenv("HIERARCHY_SCHEMA")),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
		AdminKeyHash:     strings.TrimSpace(os.Getenv("ADMIN_KEY_HASH")),
		SubmitRate:       rate.Limit(floatEnv("SUBMIT_RATE", DefaultSubmitRate)),
		SubmitBurst:      intEnv("SUBMIT_BURST", DefaultSubmitBurst),
		EnforceTimeOrder: boolEnv("ENFORCE_TIME_ORDER", true),
		Timezone:         tz,
	}
}

// Validate checks that the configuration can start the service.
func (c Config) Validate() error {
	if c.HierarchyPath == "" {
		return ErrMissingHierarchyPath
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.SubmitRate <= 0 || c.SubmitBurst <= 0 {
		return fmt.Errorf("SUBMIT_RATE and SUBMIT_BURST must be positive (got %v, %d)", c.SubmitRate, c.SubmitBurst)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func floatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
