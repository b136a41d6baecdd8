// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends selectable with PARTY_STORE.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the complete server configuration.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBDriver string `env:"PARTY_DB_DRIVER" envDefault:"sqlite3"`
	DBPath   string `env:"PARTY_DB_PATH" envDefault:"party-manager.db"`
	Store    string `env:"PARTY_STORE" envDefault:"sqlite"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"party:"`

	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// AdminAccounts maps administrator emails to bcrypt hashes, as
	// "email:hash,email:hash". Quote the value with single quotes in a dotenv
	// file so the "$" in the hashes is not expanded.
	AdminAccounts map[string]string `env:"ADMIN_ACCOUNTS"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	StaticDir          string   `env:"STATIC_DIR"`

	SubmitDelay          time.Duration `env:"SUBMIT_DELAY" envDefault:"0s"`
	EmailDelay           time.Duration `env:"EMAIL_DELAY" envDefault:"2s"`
	BookingRatePerMinute int           `env:"BOOKING_RATE_PER_MINUTE" envDefault:"10"`
	BookingRateBurst     int           `env:"BOOKING_RATE_BURST" envDefault:"3"`
	SessionTimezone      string        `env:"SESSION_TIMEZONE" envDefault:"Europe/Rome"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment and parses it. Missing dotenv files are ignored;
// variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if !slices.Contains([]string{StoreSQLite, StoreRedis, StoreMemory}, c.Store) {
		return fmt.Errorf("PARTY_STORE: unknown backend %q", c.Store)
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when PARTY_STORE=redis")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.BookingRatePerMinute <= 0 {
		return fmt.Errorf("BOOKING_RATE_PER_MINUTE must be positive, got %d", c.BookingRatePerMinute)
	}
	for email := range c.AdminAccounts {
		if !slices.ContainsFunc(c.AdminEmails, func(a string) bool {
			return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(email))
		}) {
			return fmt.Errorf("ADMIN_ACCOUNTS: %s is not in ADMIN_EMAILS", email)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Location resolves SessionTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.SessionTimezone)
	if err != nil {
		return nil, fmt.Errorf("SESSION_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
