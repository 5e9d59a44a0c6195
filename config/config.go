package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the process configuration. Every field is environment sourced;
// only JWT_SECRET (and DB_URL for postgres) is mandatory.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	CORSOrigin string `env:"CORS_ORIGIN"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBURL    string `env:"DB_URL"`

	JWTSecret    string `env:"JWT_SECRET,required,notEmpty"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	UploadsDir  string `env:"UPLOADS_DIR" envDefault:"uploads"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"200"`

	MasterUser    string   `env:"MASTER_USER" envDefault:"master"`
	MasterPass    string   `env:"MASTER_PASS" envDefault:"admin123"`
	GroupUserPass string   `env:"GROUP_USER_PASS" envDefault:"123456"`
	SeedGroups    []string `env:"SEED_GROUPS" envDefault:"Operacao,Marketing,Comercial" envSeparator:","`

	RedisURL string `env:"REDIS_URL"`

	CampaignCheckMS int64 `env:"CAMPAIGN_CHECK_MS" envDefault:"5000"`
	CleanupMS       int64 `env:"EXPIRED_CAMPAIGN_CLEANUP_MS" envDefault:"60000"`
	GraceMS         int64 `env:"EXPIRED_CAMPAIGN_GRACE_MS" envDefault:"3600000"`
	PlayerRefreshMS int64 `env:"PLAYER_REFRESH_MS" envDefault:"60000"`
}

// LoadEnv reads an optional .env file and parses the environment into a Config.
func LoadEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("missing required environment variable: DB_URL")
		}
	case DriverSQLite:
		if cfg.DBURL == "" {
			cfg.DBURL = "data/painel.sqlite"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	groups := cfg.SeedGroups[:0]
	for _, name := range cfg.SeedGroups {
		if name = strings.TrimSpace(name); name != "" {
			groups = append(groups, name)
		}
	}
	cfg.SeedGroups = groups

	return &cfg, nil
}

// CampaignCheckInterval is the transition monitor tick, clamped to [1s, 60s].
func (c *Config) CampaignCheckInterval() time.Duration {
	return ClampMillis(c.CampaignCheckMS, time.Second, time.Minute)
}

// CleanupInterval is the expiry reaper tick, clamped to [10s, 1h].
func (c *Config) CleanupInterval() time.Duration {
	return ClampMillis(c.CleanupMS, 10*time.Second, time.Hour)
}

// GracePeriod is how long an ended campaign is kept, clamped to [60s, 30d].
func (c *Config) GracePeriod() time.Duration {
	return ClampMillis(c.GraceMS, time.Minute, 30*24*time.Hour)
}

// PlayerRefreshInterval is the players' own re-poll period, clamped to [10s, 1h].
func (c *Config) PlayerRefreshInterval() time.Duration {
	return ClampMillis(c.PlayerRefreshMS, 10*time.Second, time.Hour)
}

// MaxUploadBytes converts MAX_UPLOAD_MB, falling back to 200MB for non-positive values.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 200 << 20
	}
	return c.MaxUploadMB << 20
}

// ClampMillis converts a millisecond count into a duration bounded by [lo, hi].
func ClampMillis(ms int64, lo, hi time.Duration) time.Duration {
	if ms < lo.Milliseconds() {
		return lo
	}
	if ms > hi.Milliseconds() {
		return hi
	}
	return time.Duration(ms) * time.Millisecond
}
