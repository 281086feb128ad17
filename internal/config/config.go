// Package config loads engine configuration from an optional YAML file and
// environment variables, and wires up logging. Precedence: env over file,
// file over built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ekats/mycelica-layout/internal/layout"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection (graph source + position store)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Layout server
	ListenAddr string

	// Default viewport when the caller provides none
	ViewportWidth  float64
	ViewportHeight float64

	// Column layout tuning (config file only)
	Columns layout.ColumnConfig

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the YAML config file shape.
type fileConfig struct {
	Viewport struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"viewport"`
	Columns layout.ColumnConfig `yaml:"columns"`
}

// Load reads configuration: built-in defaults, then the YAML file named by
// MYCELICA_CONFIG (if set and readable), then environment variables.
func Load() Config {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "mycelica",
		SurrealDBDatabase:  "graph",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		ListenAddr:     ":8487",
		ViewportWidth:  1600,
		ViewportHeight: 900,
		Columns:        layout.DefaultColumnConfig(),

		LogFile:  "/tmp/mycelica-layout.log",
		LogLevel: slog.LevelInfo,
	}

	if path := os.Getenv("MYCELICA_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			// A broken config file must not stop the engine; fall back to
			// defaults and say so.
			slog.Warn("ignoring unreadable config file", "path", path, "error", err)
		}
	}

	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBUser = getEnv("SURREALDB_USER", cfg.SurrealDBUser)
	cfg.SurrealDBPass = getEnv("SURREALDB_PASS", cfg.SurrealDBPass)
	cfg.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", cfg.SurrealDBAuthLevel)

	cfg.ListenAddr = getEnv("MYCELICA_LISTEN_ADDR", cfg.ListenAddr)
	cfg.ViewportWidth = getEnvFloat("MYCELICA_VIEWPORT_WIDTH", cfg.ViewportWidth)
	cfg.ViewportHeight = getEnvFloat("MYCELICA_VIEWPORT_HEIGHT", cfg.ViewportHeight)

	cfg.LogFile = getEnv("MYCELICA_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = parseLogLevel(getEnv("MYCELICA_LOG_LEVEL", "INFO"))

	return cfg
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Viewport.Width > 0 {
		c.ViewportWidth = fc.Viewport.Width
	}
	if fc.Viewport.Height > 0 {
		c.ViewportHeight = fc.Viewport.Height
	}
	c.Columns = mergeColumns(c.Columns, fc.Columns)
	return nil
}

// mergeColumns overlays non-zero file values onto the defaults.
func mergeColumns(base, file layout.ColumnConfig) layout.ColumnConfig {
	if file.Width > 0 {
		base.Width = file.Width
	}
	if file.Gap > 0 {
		base.Gap = file.Gap
	}
	if file.CharsPerLine > 0 {
		base.CharsPerLine = file.CharsPerLine
	}
	if file.LineHeight > 0 {
		base.LineHeight = file.LineHeight
	}
	if file.AuthorHeight > 0 {
		base.AuthorHeight = file.AuthorHeight
	}
	if file.Padding > 0 {
		base.Padding = file.Padding
	}
	if file.MaxHeight > 0 {
		base.MaxHeight = file.MaxHeight
	}
	if file.MessageGap > 0 {
		base.MessageGap = file.MessageGap
	}
	return base
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
