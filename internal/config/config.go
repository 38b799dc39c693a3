// Package config loads the daemon configuration from file, environment
// and defaults, in that order of increasing precedence for environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Config is the full daemon configuration.
type Config struct {
	// Listen is the HTTP listen address for the RPC server.
	Listen string `mapstructure:"listen"`

	// DataDir holds the persistent record store.
	DataDir string `mapstructure:"data_dir"`

	// HistoryPath is the SQLite trade-index file.
	HistoryPath string `mapstructure:"history_path"`

	// Admin is the account allowed to run configuration operations.
	Admin string `mapstructure:"admin"`

	// ChainID scopes signed authorizations to this deployment.
	ChainID uint64 `mapstructure:"chain_id"`

	// DomainName and DomainVersion complete the signing domain.
	DomainName    string `mapstructure:"domain_name"`
	DomainVersion string `mapstructure:"domain_version"`

	// Compress enables lz4 framing of stored values.
	Compress bool `mapstructure:"compress"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Listen:        "127.0.0.1:7245",
		DataDir:       "data",
		HistoryPath:   "data/history.db",
		ChainID:       1,
		DomainName:    "gomarketd",
		DomainVersion: "1",
		Compress:      true,
		LogLevel:      "info",
	}
}

// Load reads configuration from the given file (optional) and the
// MARKETD_ environment, layered over the defaults.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("listen", def.Listen)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("history_path", def.HistoryPath)
	v.SetDefault("admin", def.Admin)
	v.SetDefault("chain_id", def.ChainID)
	v.SetDefault("domain_name", def.DomainName)
	v.SetDefault("domain_version", def.DomainVersion)
	v.SetDefault("compress", def.Compress)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("MARKETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.Admin == "" {
		return errors.New("admin address is required")
	}
	if _, err := types.ParseAddress(c.Admin); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	if c.ChainID == 0 {
		return errors.New("chain id must be non-zero")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// AdminAddress returns the parsed admin account.
func (c Config) AdminAddress() types.Address {
	addr, _ := types.ParseAddress(c.Admin)
	return addr
}
