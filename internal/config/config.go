// Package config loads wf settings from a TOML file and WIDGETS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WIDGETS_DATABASE_URL.
const EnvPrefix = "WIDGETS"

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	NATS     NATSConfig
	S3       S3Config
	Backup   BackupConfig
	Log      LogConfig
}

// DatabaseConfig selects the store. URL is a SQLite file path, or a
// postgres:// URL.
type DatabaseConfig struct {
	URL string
}

// NATSConfig holds the event bus connection; an empty URL disables events.
type NATSConfig struct {
	URL string
}

// S3Config is used for s3:// export and backup targets.
type S3Config struct {
	Region   string
	Endpoint string // custom endpoint for MinIO
}

// BackupConfig holds defaults for `wf backup --git-repo`.
type BackupConfig struct {
	GitRepo   string `mapstructure:"git_repo"`
	GitFile   string `mapstructure:"git_file"`
	GitBranch string `mapstructure:"git_branch"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// IsPostgres reports whether the URL selects the PostgreSQL backend.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

// SQLitePath returns URL with an optional sqlite:// scheme removed.
func (d DatabaseConfig) SQLitePath() string {
	return strings.TrimPrefix(d.URL, "sqlite://")
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// DefaultDatabasePath returns ~/.blackroad/widget-factory.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".blackroad", "widget-factory.db")
}

// DefaultConfigPath returns ~/.config/widgetfactory/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "widgetfactory", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// WIDGETS_. An explicit path must exist; otherwise $WIDGETS_CONFIG or the
// default config path is read when present.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("database.url", DefaultDatabasePath())
	v.SetDefault("nats.url", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("backup.git_repo", "")
	v.SetDefault("backup.git_file", "widgets.jsonl")
	v.SetDefault("backup.git_branch", "main")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	required := path != ""
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		required = path != ""
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			if required {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Database.URL = expandHome(c.Database.URL)
	return c, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
