// Package config loads server settings from a .env file, an optional TOML
// file and STUDIO_* environment variables, in increasing order of precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultPath is used when STUDIO_CONFIG is not set.
const DefaultPath = "studio.toml"

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Email   EmailConfig   `toml:"email"`
	Studio  StudioConfig  `toml:"studio"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	Env            string   `toml:"env"`
	CSRFKey        string   `toml:"csrf_key"` // 64 hex characters
	TrustedOrigins []string `toml:"trusted_origins"`
	RateLimit      int      `toml:"rate_limit"` // requests per second per IP
	SlowRequestMs  int      `toml:"slow_request_ms"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath      string `toml:"db_path"`
	SlowQueryMs int    `toml:"slow_query_ms"`
}

// EmailConfig holds booking confirmation settings. An empty ResendKey selects the noop sender.
type EmailConfig struct {
	ResendKey    string `toml:"resend_key"`
	From         string `toml:"from"`
	ReplyTo      string `toml:"reply_to"`
	RetryMinutes int    `toml:"retry_minutes"` // outbox retry interval for failed confirmations
}

// StudioConfig holds studio-wide scheduling settings.
type StudioConfig struct {
	Name     string `toml:"name"`
	Timezone string `toml:"timezone"` // IANA name; decides what "today" is
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			Env:            EnvDevelopment,
			TrustedOrigins: []string{"localhost:8080", "127.0.0.1:8080"},
			RateLimit:      10,
			SlowRequestMs:  200,
		},
		Storage: StorageConfig{
			DBPath:      "studio.db",
			SlowQueryMs: 50,
		},
		Email: EmailConfig{
			From:         "Studio <bookings@localhost>",
			RetryMinutes: 5,
		},
		Studio: StudioConfig{
			Name:     "Studio",
			Timezone: "Local",
		},
	}
}

// Load reads .env (if present), then the file named by STUDIO_CONFIG or
// DefaultPath, then environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	path := os.Getenv("STUDIO_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
// PRE: path may name a missing file
// POST: Returns a validated Config
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"STUDIO_ADDR":        &cfg.Server.Addr,
		"STUDIO_ENV":         &cfg.Server.Env,
		"STUDIO_CSRF_KEY":    &cfg.Server.CSRFKey,
		"STUDIO_DB_PATH":     &cfg.Storage.DBPath,
		"STUDIO_RESEND_KEY":  &cfg.Email.ResendKey,
		"STUDIO_RESEND_FROM": &cfg.Email.From,
		"STUDIO_REPLY_TO":    &cfg.Email.ReplyTo,
		"STUDIO_TIMEZONE":    &cfg.Studio.Timezone,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"STUDIO_RATE_LIMIT":      &cfg.Server.RateLimit,
		"STUDIO_SLOW_REQUEST_MS": &cfg.Server.SlowRequestMs,
		"STUDIO_SLOW_QUERY_MS":   &cfg.Storage.SlowQueryMs,
		"STUDIO_RETRY_MINUTES":   &cfg.Email.RetryMinutes,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
	}

	if v := os.Getenv("STUDIO_TRUSTED_ORIGINS"); v != "" {
		cfg.Server.TrustedOrigins = strings.Split(v, ",")
	}
	cfg.Server.Env = normalizeEnv(cfg.Server.Env)
	return nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server addr must be set")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Server.RateLimit <= 0 {
		return errors.New("rate_limit must be positive")
	}
	if c.Email.RetryMinutes <= 0 {
		return errors.New("retry_minutes must be positive")
	}
	if _, err := time.LoadLocation(c.Studio.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Studio.Timezone, err)
	}
	if c.Server.CSRFKey != "" {
		if _, err := decodeKey(c.Server.CSRFKey); err != nil {
			return err
		}
	} else if c.IsProduction() {
		return errors.New("csrf_key is required in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// Location returns the studio time zone.
// PRE: Validate has succeeded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Studio.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Clock returns the current time in the studio time zone.
func (c *Config) Clock() func() time.Time {
	loc := c.Location()
	return func() time.Time { return time.Now().In(loc) }
}

// CSRFKey returns the 32-byte CSRF secret. Outside production an unset key
// is replaced by a random one, so form tokens do not survive a restart.
// POST: Returns exactly 32 bytes; generated reports whether the key is random
func (c *Config) CSRFKey() (key []byte, generated bool, err error) {
	if c.Server.CSRFKey != "" {
		key, err = decodeKey(c.Server.CSRFKey)
		return key, false, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	return key, true, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != 32 {
		return nil, errors.New("csrf_key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}
