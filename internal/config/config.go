// Package config loads the daemon configuration: a YAML file, overlaid by
// environment variables, falling back to defaults. Environment always wins
// over the file, so a deployment can override single values without editing
// it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	Log   Log   `yaml:"log"`
	Redis Redis `yaml:"redis"`

	// SystemUID and HelperUID are the two caller identities exempt from
	// visibility scoping.
	SystemUID int64 `yaml:"system_uid"`
	HelperUID int64 `yaml:"helper_uid"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Redis configures the work-trigger stream. An empty Addr disables
// publishing; mutations still succeed, they just signal nobody.
type Redis struct {
	Addr   string `yaml:"addr"`
	Stream string `yaml:"stream"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		DBPath: "transfers.db",
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Redis: Redis{
			Stream: "transfers:work",
		},
		SystemUID: 1000,
		HelperUID: 1000,
	}
}

// Load builds the configuration: defaults, then the YAML file at path if it
// exists, then environment overrides. A missing file is not an error; a
// malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment.
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays TRANSFERD_* environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.DBPath, "TRANSFERD_DB_PATH")
	setString(&cfg.Log.Level, "TRANSFERD_LOG_LEVEL")
	setString(&cfg.Log.Format, "TRANSFERD_LOG_FORMAT")
	setString(&cfg.Redis.Addr, "TRANSFERD_REDIS_ADDR")
	setString(&cfg.Redis.Stream, "TRANSFERD_REDIS_STREAM")
	setInt(&cfg.SystemUID, "TRANSFERD_SYSTEM_UID")
	setInt(&cfg.HelperUID, "TRANSFERD_HELPER_UID")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Redis.Addr != "" && c.Redis.Stream == "" {
		return fmt.Errorf("redis.stream must be set when redis.addr is")
	}
	if c.SystemUID < 0 || c.HelperUID < 0 {
		return fmt.Errorf("uids must not be negative")
	}
	return nil
}
