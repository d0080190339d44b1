// Package config loads BountyHub configuration from a TOML file with
// environment variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the config file location used when none is given.
const DefaultPath = "bountyhub.toml"

// Config is the top-level BountyHub configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	GitHub  GitHubConfig  `toml:"github"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// BaseURL is the externally reachable URL of this deployment. It is
	// used to build the OAuth redirect URL and the webhook callback URL.
	BaseURL string `toml:"base_url"`
}

// GitHubConfig configures the GitHub OAuth app and API access.
type GitHubConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// WebhookSecret signs webhook deliveries. Required for the server.
	WebhookSecret string `toml:"webhook_secret"`

	// APIToken is the bot token used for API calls not tied to a user
	// session, such as updating status comments from webhook deliveries.
	APIToken string `toml:"api_token"`

	// CacheTTL bounds how long GitHub API responses are cached.
	CacheTTL duration `toml:"cache_ttl"`
}

// StorageConfig selects the bounty persistence backend.
type StorageConfig struct {
	// Backend is "mongo" or "memory".
	Backend string `toml:"backend"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	// Backend is "redis" or "memory".
	Backend string `toml:"backend"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// duration wraps time.Duration for TOML string values like "15m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		GitHub: GitHubConfig{
			CacheTTL: duration{15 * time.Minute},
		},
		Storage: StorageConfig{
			Backend:       "memory",
			MongoDatabase: "bountyhub",
		},
		Session: SessionConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the config file at path, applies environment overrides, and
// validates the result. A missing file is not an error when path is the
// default: the defaults plus environment variables apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// Defaults + env only.
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides secrets from the environment so they never need to
// live in the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BOUNTYHUB_GITHUB_CLIENT_ID"); v != "" {
		cfg.GitHub.ClientID = v
	}
	if v := os.Getenv("BOUNTYHUB_GITHUB_CLIENT_SECRET"); v != "" {
		cfg.GitHub.ClientSecret = v
	}
	if v := os.Getenv("BOUNTYHUB_WEBHOOK_SECRET"); v != "" {
		cfg.GitHub.WebhookSecret = v
	}
	if v := os.Getenv("BOUNTYHUB_GITHUB_API_TOKEN"); v != "" {
		cfg.GitHub.APIToken = v
	}
	if v := os.Getenv("BOUNTYHUB_MONGO_URI"); v != "" {
		cfg.Storage.MongoURI = v
	}
	if v := os.Getenv("BOUNTYHUB_REDIS_ADDR"); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := os.Getenv("BOUNTYHUB_REDIS_PASSWORD"); v != "" {
		cfg.Session.RedisPassword = v
	}
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}

	switch c.Storage.Backend {
	case "memory":
	case "mongo":
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want mongo or memory)", c.Storage.Backend)
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			return errors.New("session.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (want redis or memory)", c.Session.Backend)
	}

	return nil
}

// RedirectURL is the OAuth callback URL registered with the GitHub app.
func (c Config) RedirectURL() string {
	return c.Server.BaseURL + "/auth/github/callback"
}

// WebhookURL is the webhook delivery endpoint registered on repositories.
func (c Config) WebhookURL() string {
	return c.Server.BaseURL + "/webhooks/github"
}

// GitHubCacheTTL returns the configured API cache TTL.
func (c Config) GitHubCacheTTL() time.Duration {
	return c.GitHub.CacheTTL.Duration
}
