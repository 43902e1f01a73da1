package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clinic/clinic/internal/nlquery"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoUser     string `mapstructure:"MONGODB_USER"`
	MongoPass     string `mapstructure:"MONGODB_PASS"`
	MongoHost     string `mapstructure:"MONGODB_HOST"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	QueryMaxLength      int    `mapstructure:"QUERY_MAX_LENGTH"`
	QueryMatchMode      string `mapstructure:"QUERY_MATCH_MODE"`
	QueryVocabularyFile string `mapstructure:"QUERY_VOCABULARY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORE_DRIVER", "MONGODB_URI", "MONGODB_USER", "MONGODB_PASS", "MONGODB_HOST", "MONGODB_DATABASE",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "SQLITE_PATH",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"QUERY_MAX_LENGTH", "QUERY_MATCH_MODE", "QUERY_VOCABULARY_FILE",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. Call Validate before using the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_DATABASE", "microservices")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SQLITE_PATH", "clinic.db")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("QUERY_MAX_LENGTH", 500)
	v.SetDefault("QUERY_MATCH_MODE", "phrase")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// The .env file is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MatchMode returns the parsed QUERY_MATCH_MODE.
func (c *Config) MatchMode() (nlquery.MatchMode, error) {
	return nlquery.ParseMatchMode(c.QueryMatchMode)
}

// Validate checks that the selected store driver has what it needs to
// connect and that the numeric limits make sense.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" && (c.MongoUser == "" || c.MongoPass == "" || c.MongoHost == "") {
			return fmt.Errorf("STORE_DRIVER=mongo needs MONGODB_URI or MONGODB_USER, MONGODB_PASS and MONGODB_HOST")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE is required")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must be between 0 and DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case DriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of mongo, postgres, sqlite or memory, got %q", c.StoreDriver)
	}

	if c.QueryMaxLength <= 0 {
		return fmt.Errorf("QUERY_MAX_LENGTH must be positive, got %d", c.QueryMaxLength)
	}
	if _, err := c.MatchMode(); err != nil {
		return fmt.Errorf("QUERY_MATCH_MODE: %w", err)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}
