package config

import (
	"os"
	"strconv"
	"time"

	"bubbleviz/internal/errors"
)

// DefaultPlotlyURL is the versioned Plotly bundle the chart pages load
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-1.30.0.min.js"

// Renderer kinds
const (
	RendererPlotly = "plotly"
	RendererSVG    = "svg"
	RendererPNG    = "png"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Script   ScriptConfig
	Chart    ChartConfig
	Database DatabaseConfig
	Data     DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ScriptConfig controls the one-shot chart library fetch
type ScriptConfig struct {
	URL         string
	LoadTimeout time.Duration
	Inline      bool
}

// ChartConfig holds rendering settings
type ChartConfig struct {
	Renderer   string
	Width      int
	Height     int
	SortGroups bool
}

// DatabaseConfig is optional; an empty URL disables the SQL table source
type DatabaseConfig struct {
	URL string
}

// DataConfig names an optional table rendered at startup, read either from a
// file or from a query against the configured database.
type DataConfig struct {
	File  string
	Query string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Script:   loadScriptConfig(),
		Chart:    loadChartConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Data: DataConfig{
			File:  getEnvOrDefault("DATA_FILE", ""),
			Query: getEnvOrDefault("DATA_QUERY", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadScriptConfig() ScriptConfig {
	return ScriptConfig{
		URL:         getEnvOrDefault("PLOTLY_URL", DefaultPlotlyURL),
		LoadTimeout: getEnvDurationOrDefault("SCRIPT_LOAD_TIMEOUT", 30*time.Second),
		Inline:      getEnvBoolOrDefault("INLINE_SCRIPT", true),
	}
}

func loadChartConfig() ChartConfig {
	return ChartConfig{
		Renderer:   getEnvOrDefault("RENDERER", RendererPlotly),
		Width:      getEnvIntOrDefault("CHART_WIDTH", 800),
		Height:     getEnvIntOrDefault("CHART_HEIGHT", 500),
		SortGroups: getEnvBoolOrDefault("SORT_GROUPS", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Chart.Renderer {
	case RendererPlotly, RendererSVG, RendererPNG:
	default:
		return errors.ConfigInvalid("RENDERER must be one of plotly, svg, png")
	}
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return errors.ConfigInvalid("chart dimensions must be positive")
	}
	if config.Script.URL == "" {
		return errors.ConfigInvalid("PLOTLY_URL is required")
	}
	if config.Data.Query != "" && config.Database.URL == "" {
		return errors.ConfigInvalid("DATA_QUERY requires DATABASE_URL")
	}
	if config.Data.File != "" && config.Data.Query != "" {
		return errors.ConfigInvalid("set only one of DATA_FILE and DATA_QUERY")
	}
	if config.Script.LoadTimeout < 0 {
		return errors.ConfigInvalid("SCRIPT_LOAD_TIMEOUT cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
