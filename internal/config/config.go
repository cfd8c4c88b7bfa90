// Package config loads share-mal settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. an optional TOML file
//  3. a .env file in the working directory, if present
//  4. environment variables: DB_PATH, HTTP_ADDR, LOG_LEVEL, SHAREMAL_API_URL
//
// Variables loaded from .env never override ones already set in the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDBPath   = "DB_PATH"
	EnvHTTPAddr = "HTTP_ADDR"
	EnvLogLevel = "LOG_LEVEL"
	EnvAPIURL   = "SHAREMAL_API_URL"
)

// Config is the full configuration of the server and the CLI.
type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	DBPath        string   `toml:"db_path"`
	Metrics       bool     `toml:"metrics"`
	ShutdownGrace Duration `toml:"shutdown_grace"`
}

// ClientConfig configures the CLI's API client.
type ClientConfig struct {
	APIURL  string   `toml:"api_url"`
	Timeout Duration `toml:"timeout"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as "30s" or "1m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":8080",
			DBPath:        "./data/bills.db",
			Metrics:       true,
			ShutdownGrace: Duration{10 * time.Second},
		},
		Client: ClientConfig{
			APIURL:  "http://localhost:8080/api/v1",
			Timeout: Duration{30 * time.Second},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path names an optional TOML file; an empty
// path skips it, while a path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.Server.Addr = getEnv(EnvHTTPAddr, cfg.Server.Addr)
	cfg.Server.DBPath = getEnv(EnvDBPath, cfg.Server.DBPath)
	cfg.Client.APIURL = getEnv(EnvAPIURL, cfg.Client.APIURL)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
