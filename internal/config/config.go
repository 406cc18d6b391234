package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Pipeline   analysis.Params  `json:"pipeline"`
	MetricsAPI MetricsAPIConfig `json:"metrics_api"`
	Classifier ClassifierConfig `json:"classifier"`
	Export     ExportConfig     `json:"export"`
}

// MetricsAPIConfig points at the remote metrics service.
// Leave base_url empty to always analyze on this machine.
type MetricsAPIConfig struct {
	BaseURL           string `json:"base_url"`
	APIKey            string `json:"api_key"`
	ClientID          string `json:"client_id"`
	ClientSecret      string `json:"client_secret"`
	TokenURL          string `json:"token_url"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	RequestsPerMinute int    `json:"requests_per_minute"`
}

// Enabled reports whether a remote service is configured
func (m MetricsAPIConfig) Enabled() bool {
	return m.BaseURL != ""
}

// ClassifierConfig locates the stroke-style model
type ClassifierConfig struct {
	ModelPath string `json:"model_path"`
}

// ExportConfig holds export preferences
type ExportConfig struct {
	OutputDir string `json:"output_dir"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Pipeline: analysis.DefaultParams(),
		MetricsAPI: MetricsAPIConfig{
			TimeoutSeconds:    30,
			RequestsPerMinute: 60,
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
	}
}

// Load reads the configuration from ~/.dory/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, falling back to the defaults when no file exists
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNoConfig) {
		d := DefaultConfig()
		return &d, nil
	}
	return cfg, err
}

// applyDefaults fills in missing values
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	c.Pipeline = c.Pipeline.WithDefaults()
	if c.MetricsAPI.TimeoutSeconds == 0 {
		c.MetricsAPI.TimeoutSeconds = defaults.MetricsAPI.TimeoutSeconds
	}
	if c.MetricsAPI.RequestsPerMinute == 0 {
		c.MetricsAPI.RequestsPerMinute = defaults.MetricsAPI.RequestsPerMinute
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = defaults.Export.OutputDir
	}
}

// Save writes the configuration to ~/.dory/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.MetricsAPI.BaseURL = "http://localhost:8080"
	example.MetricsAPI.APIKey = "YOUR_API_KEY"

	return Save(&example)
}

// Validate checks the config for values the pipeline or client can't use
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.PoolLengthMeters <= 0 {
		return fmt.Errorf("pipeline.pool_length_m must be positive, got %v", p.PoolLengthMeters)
	}
	if p.StrokeLowCutHz >= p.StrokeHighCutHz {
		return fmt.Errorf("pipeline.stroke_low_cut_hz (%v) must be below pipeline.stroke_high_cut_hz (%v)", p.StrokeLowCutHz, p.StrokeHighCutHz)
	}
	if p.PeakThresholdFraction < 0 || p.PeakThresholdFraction >= 1 {
		return fmt.Errorf("pipeline.peak_threshold_fraction must be in [0, 1), got %v", p.PeakThresholdFraction)
	}

	m := c.MetricsAPI
	if m.BaseURL != "" {
		u, err := url.Parse(m.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("metrics_api.base_url must be an http(s) URL, got %q", m.BaseURL)
		}
		if m.APIKey == "YOUR_API_KEY" {
			return errors.New("metrics_api.api_key is still the example value")
		}
	}
	if (m.ClientID == "") != (m.ClientSecret == "") {
		return errors.New("metrics_api.client_id and metrics_api.client_secret must be set together")
	}
	if m.ClientID != "" && m.TokenURL == "" {
		return errors.New("metrics_api.token_url is required with client credentials")
	}
	if m.RequestsPerMinute < 0 {
		return fmt.Errorf("metrics_api.requests_per_minute must not be negative, got %d", m.RequestsPerMinute)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".dory"), nil
}
