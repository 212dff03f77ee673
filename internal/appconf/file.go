package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// JSONConfig mirrors the structure of an on-disk JSON configuration file.
// Pointer fields distinguish "absent" from zero values so flag defaults
// survive a partial config file.
type JSONConfig struct {
	Port          *int     `json:"port"`
	Env           string   `json:"env"`
	ApiKeys       []string `json:"api-keys"`
	RateLimit     *int     `json:"rate-limit"`
	Verbose       bool     `json:"verbose"`
	DatasetURL    string   `json:"dataset-url"`
	DataPath      string   `json:"data-path"`
	AuthHeaderKey string   `json:"auth-header-key"`
	AuthHeaderVal string   `json:"auth-header-value"`
}

// DatasetConfigData carries the dataset-related subset of a JSONConfig so the
// caller can build the data manager config without importing this package's
// consumers.
type DatasetConfigData struct {
	DatasetURL    string
	DataPath      string
	AuthHeaderKey string
	AuthHeaderVal string
	Env           Environment
	Verbose       bool
}

// LoadFromFile reads and validates a JSON config file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *JSONConfig) validate() error {
	if c.Port != nil && (*c.Port < 0 || *c.Port > 65535) {
		return fmt.Errorf("port %d out of range", *c.Port)
	}
	if c.Env != "" {
		switch strings.ToLower(c.Env) {
		case "development", "test", "production":
		default:
			return fmt.Errorf("unknown env %q", c.Env)
		}
	}
	if c.RateLimit != nil && *c.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative, got %d", *c.RateLimit)
	}
	return nil
}

// ToAppConfig converts the file values into an application Config,
// leaving unset fields at their zero value for the caller to default.
func (c *JSONConfig) ToAppConfig() Config {
	cfg := Config{
		Env:     EnvFlagToEnvironment(strings.ToLower(c.Env)),
		ApiKeys: c.ApiKeys,
		Verbose: c.Verbose,
	}
	if c.Port != nil {
		cfg.Port = *c.Port
	}
	if c.RateLimit != nil {
		cfg.RateLimit = *c.RateLimit
	}
	return cfg
}

// ToDatasetConfigData extracts the dataset source settings.
func (c *JSONConfig) ToDatasetConfigData() DatasetConfigData {
	return DatasetConfigData{
		DatasetURL:    c.DatasetURL,
		DataPath:      c.DataPath,
		AuthHeaderKey: c.AuthHeaderKey,
		AuthHeaderVal: c.AuthHeaderVal,
		Env:           EnvFlagToEnvironment(strings.ToLower(c.Env)),
		Verbose:       c.Verbose,
	}
}
