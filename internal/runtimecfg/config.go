// Package runtimecfg loads and validates the engine's configuration and
// initializes the global structured logger.
package runtimecfg

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Match   MatchConfig  `yaml:"match" mapstructure:"match"`
	SourceA SourceConfig `yaml:"source_a" mapstructure:"source_a"`
	SourceB SourceConfig `yaml:"source_b" mapstructure:"source_b"`
	Sink    SinkConfig   `yaml:"sink" mapstructure:"sink"`
	Notion  NotionConfig `yaml:"notion" mapstructure:"notion"`
	Store   StoreConfig  `yaml:"store" mapstructure:"store"`
	Server  ServerConfig `yaml:"server" mapstructure:"server"`
	Log     LogConfig    `yaml:"log" mapstructure:"log"`
}

// MatchConfig configures the comparison engine.
type MatchConfig struct {
	WorkerAmount    int     `yaml:"worker_amount" mapstructure:"worker_amount"`
	Strict          bool    `yaml:"strict" mapstructure:"strict"`
	Threshold       float64 `yaml:"threshold" mapstructure:"threshold"`
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
	TimeoutSeconds  float64 `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	FlushEvery      int     `yaml:"flush_every" mapstructure:"flush_every"`
}

// SourceConfig configures one side of the comparison — which loader to
// use and where its data lives. Kind is one of: csv, sqlite, ftp, xlsx,
// shapefile, notion. Table names the origin tag recorded against every
// company loaded from this source (also the table name for sqlite); the
// notion kind reads its database ID from NotionConfig instead, since a
// database is shared with the review-queue sink.
type SourceConfig struct {
	Kind      string `yaml:"kind" mapstructure:"kind"`
	Path      string `yaml:"path" mapstructure:"path"`
	Table     string `yaml:"table" mapstructure:"table"`
	HasHeader bool   `yaml:"has_header" mapstructure:"has_header"`
}

// SinkConfig configures where accepted matches are written. Kind is one
// of: csv, postgres.
type SinkConfig struct {
	Kind string `yaml:"kind" mapstructure:"kind"`
	Path string `yaml:"path" mapstructure:"path"`
}

// NotionConfig holds Notion API credentials for the manual-review queue.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	DatabaseID string  `yaml:"database_id" mapstructure:"database_id"`
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// StoreConfig configures the persistence backend behind the HTTP surface.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the read/delete HTTP surface.
type ServerConfig struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks required configuration fields based on run mode.
// Supported modes: "match", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "match":
		if c.SourceA.Path == "" {
			errs = append(errs, "source_a.path is required")
		}
		if c.SourceB.Path == "" {
			errs = append(errs, "source_b.path is required")
		}
		if c.Sink.Kind == "postgres" && c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required when sink.kind is postgres")
		}
		if c.Sink.Kind == "csv" && c.Sink.Path == "" {
			errs = append(errs, "sink.path is required when sink.kind is csv")
		}
		if c.Notion.Enabled && c.Notion.Token == "" {
			errs = append(errs, "notion.token is required when notion.enabled is true")
		}
		if c.Notion.Enabled && c.Notion.DatabaseID == "" {
			errs = append(errs, "notion.database_id is required when notion.enabled is true")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			errs = append(errs, "server.rate_limit must be > 0")
		}
		if c.Server.RateLimitBurst <= 0 {
			errs = append(errs, "server.rate_limit_burst must be > 0")
		}
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
		if c.Store.Driver == "sqlite" && c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	default:
		return eris.Errorf("runtimecfg: unknown mode %q", mode)
	}

	if c.Match.WorkerAmount < 1 || c.Match.WorkerAmount > 500 {
		errs = append(errs, "match.worker_amount must be between 1 and 500")
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		errs = append(errs, "match.threshold must be between 0.0 and 1.0")
	}
	if c.Match.TimeoutSeconds <= 0 {
		errs = append(errs, "match.timeout_seconds must be > 0")
	}
	if c.Match.ReviewThreshold < 0 || c.Match.ReviewThreshold > c.Match.Threshold {
		errs = append(errs, "match.review_threshold must be between 0.0 and match.threshold")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("runtimecfg: validation failed: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ENTITYRESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("match.worker_amount", 20)
	v.SetDefault("match.strict", true)
	v.SetDefault("match.threshold", 0.7)
	v.SetDefault("match.review_threshold", 0.5)
	v.SetDefault("match.timeout_seconds", 60.0)
	v.SetDefault("match.flush_every", 500)
	v.SetDefault("source_a.kind", "csv")
	v.SetDefault("source_a.has_header", false)
	v.SetDefault("source_b.kind", "csv")
	v.SetDefault("source_b.has_header", false)
	v.SetDefault("sink.kind", "csv")
	v.SetDefault("notion.enabled", false)
	v.SetDefault("notion.rate_limit", 3.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "./entity-resolver.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "runtimecfg: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "runtimecfg: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "runtimecfg: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "runtimecfg: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
