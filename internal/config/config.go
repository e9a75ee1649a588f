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

// Config holds application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// APIConfig points the client at the Clubbies API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds sqlite settings for the local venue catalogue.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig locates the persisted access token.
type SessionConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ServerConfig configures clubbies-authd.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	DatabasePath string        `mapstructure:"database_path"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	MinAge       int           `mapstructure:"min_age"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "clubbies")
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "clubbies")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "clubbies")
}

// Load reads configuration from file and env. Env var overrides use prefix CLUBBIES_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout", "8s")
	v.SetDefault("database.path", filepath.Join(dataDir(), "clubbies.db"))
	v.SetDefault("session.token_file", filepath.Join(configDir(), "session.json"))
	v.SetDefault("log.path", filepath.Join(dataDir(), "clubbies.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.database_path", filepath.Join(dataDir(), "authd.db"))
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", "10m")
	v.SetDefault("server.min_age", 16)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CLUBBIES_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "clubbies"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLUBBIES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.Timeout <= 0 {
		return Config{}, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return c, nil
}

// Save writes the client-side settings to disk, creating the config directory
// if needed. Server settings are left to env and hand-edited files.
func Save(cfg Config) error {
	path := os.Getenv("CLUBBIES_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "clubbies", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("session.token_file", cfg.Session.TokenFile)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
