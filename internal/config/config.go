// Package config loads Docent's runtime configuration from defaults, an
// optional JSON file (~/.docent/config.json), and environment overrides,
// in that order of precedence (later wins).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the filename of the optional JSON config inside DataDir.
const ConfigFile = "config.json"

// Defaults.
const (
	DefaultBaseURL         = "https://openrouter.ai/api/v1"
	DefaultGatekeeperModel = "google/gemma-3n-e2b-it:free"
	DefaultReferenceModel  = "google/gemma-3-12b-it:free"
)

// ErrMissingAPIKey means no API key was found in the config file or
// environment. Model calls cannot be made without one.
var ErrMissingAPIKey = errors.New("config: missing API key (set DOCENT_API_KEY or OPENROUTER_API_KEY)")

// Config holds everything Docent needs at runtime.
type Config struct {
	// APIKey authenticates against the OpenAI-compatible endpoint.
	APIKey string `json:"api_key,omitempty"`
	// BaseURL is the endpoint root; defaults to OpenRouter.
	BaseURL string `json:"base_url,omitempty"`
	// GatekeeperModel is the cheap model used for routing and synthesis.
	GatekeeperModel string `json:"gatekeeper_model,omitempty"`
	// ReferenceModel is the capable model used for grounded evaluation.
	ReferenceModel string `json:"reference_model,omitempty"`
	// DataDir holds the knowledge database and config file.
	DataDir string `json:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		BaseURL:         DefaultBaseURL,
		GatekeeperModel: DefaultGatekeeperModel,
		ReferenceModel:  DefaultReferenceModel,
		DataDir:         filepath.Join(home, ".docent"),
	}
}

// Load builds the effective configuration: defaults, then the JSON file
// in DataDir if present, then environment variables. A missing config
// file is not an error.
func Load() (Config, error) {
	cfg := Default()
	if dir := os.Getenv("DOCENT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if err := cfg.applyFile(filepath.Join(cfg.DataDir, ConfigFile)); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	if file.APIKey != "" {
		c.APIKey = file.APIKey
	}
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.GatekeeperModel != "" {
		c.GatekeeperModel = file.GatekeeperModel
	}
	if file.ReferenceModel != "" {
		c.ReferenceModel = file.ReferenceModel
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DOCENT_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DOCENT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("DOCENT_GATEKEEPER_MODEL"); v != "" {
		c.GatekeeperModel = v
	}
	if v := os.Getenv("DOCENT_REFERENCE_MODEL"); v != "" {
		c.ReferenceModel = v
	}
}

// Validate checks that the configuration is usable for live model calls.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
