// Package config loads settings from defaults, an optional config file
// and TADA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the resolved configuration.
type Config struct {
	// Server is the base URL of a remote service. Empty means the local
	// store under DataDir is used in-process.
	Server  string        `mapstructure:"server"`
	Backend string        `mapstructure:"backend"`
	DataDir string        `mapstructure:"data_dir"`
	Timeout time.Duration `mapstructure:"timeout"`
	Listen  string        `mapstructure:"listen"`

	// ServeToken, when set, is required from clients of `todo serve`.
	ServeToken string `mapstructure:"serve_token"`
	Theme      string `mapstructure:"theme"`
	Log        Log    `mapstructure:"log"`
}

type Log struct {
	Level string `mapstructure:"level"`

	// File, when set, receives logs through a rotating writer.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Dir is the per-user directory for config, credentials and data.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	dir, err := Dir()
	if err != nil {
		dir = ".tada"
	}
	v.SetDefault("server", "")
	v.SetDefault("backend", BackendJSON)
	v.SetDefault("data_dir", dir)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("listen", "localhost:8080")
	v.SetDefault("serve_token", "")
	v.SetDefault("theme", "classic")
	v.SetDefault("log.level", "error")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetEnvPrefix("TADA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or config.{yaml,toml,json} in Dir when file is empty)
// into v and decodes the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	return nil
}
