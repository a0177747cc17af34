package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage backend selectors.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the complete application configuration, loadable from
// environment variables (LEDGER_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage     string `default:"postgres" usage:"Storage backend: postgres or memory"`
	DatabaseURL string `usage:"PostgreSQL connection URL (LEDGER_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Reports   ReportsConfig
	Graceful  GracefulConfig
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Disabled turns off API key checks. Only sensible for local memory-mode
	// runs; the postgres deployment keeps it on.
	Disabled bool   `default:"false" usage:"Disable API key authentication" flag:"auth-disabled"`
	Pepper   string `usage:"HMAC pepper for API key hashing (LEDGER_AUTH_PEPPER)" flag:"auth-pepper"`
	// Keys holds raw API keys accepted in memory mode, where there is no
	// api_keys table to consult. Ignored for postgres storage.
	Keys []string `usage:"Static API keys accepted in memory mode" flag:"auth-keys"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// ReportsConfig controls the periodic report snapshot job.
type ReportsConfig struct {
	Enabled  bool   `default:"false" usage:"Enable scheduled report snapshots"`
	Schedule string `default:"0 6 * * 1" usage:"Cron schedule for report snapshots"`
	Dir      string `default:"reports" usage:"Directory for report snapshot files"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LEDGER",
		Files:     []string{"config.yaml", "/etc/sales-ledger/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL is required: set LEDGER_DATABASE_URL or DATABASE_URL")
		}
	case StorageMemory:
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Storage)
	}

	if !cfg.Auth.Disabled && cfg.Auth.Pepper == "" {
		return nil, errors.New("auth pepper is required: set LEDGER_AUTH_PEPPER or disable auth")
	}
	if cfg.Storage == StorageMemory && !cfg.Auth.Disabled && len(cfg.Auth.Keys) == 0 {
		return nil, errors.New("memory storage with auth enabled needs LEDGER_AUTH_KEYS")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's LEDGER_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
