package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/statline-ff/statline/internal/model"
)

type Config struct {
	Addr           string `yaml:"addr"`
	MCPPath        string `yaml:"mcp_path"`
	RawRoot        string `yaml:"raw_root"`
	DerivedRoot    string `yaml:"derived_root"`
	WriteDerived   bool   `yaml:"write_derived"`
	ComputeMissing bool   `yaml:"compute_missing"`
	DefaultFormat  string `yaml:"default_format"`
	RequireAuth    bool   `yaml:"require_auth"`
	AuthHeader     string `yaml:"auth_header"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`

	// APIKey comes from the environment only.
	APIKey string `yaml:"-"`
}

const APIKeyEnv = "STATLINE_API_KEY"

func Default() Config {
	return Config{
		Addr:           ":8080",
		MCPPath:        "/mcp",
		RawRoot:        "data/raw",
		DerivedRoot:    "data/derived",
		WriteDerived:   false,
		ComputeMissing: true,
		DefaultFormat:  string(model.PPR),
		RequireAuth:    false,
		AuthHeader:     "X-API-Key",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads a YAML file over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read is Load without validation, for callers that layer flags on top.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	return cfg, nil
}

func (c Config) Validate() error {
	if c.RawRoot == "" {
		return fmt.Errorf("raw_root is required")
	}
	if !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("mcp_path must start with /: %q", c.MCPPath)
	}
	if c.RequireAuth && c.APIKey == "" {
		return fmt.Errorf("%s is required (set env var or disable require_auth)", APIKeyEnv)
	}
	return nil
}

// Format is the configured default scoring format.
func (c Config) Format() model.Format {
	return model.ParseFormat(c.DefaultFormat)
}
