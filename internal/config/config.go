package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the settings the CLI and control server start from. Command
// line flags override anything set here.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	OutputDir      string   `yaml:"output_dir"`
	OutputFormat   string   `yaml:"output_format"`
	Workers        int      `yaml:"workers"`
	ParentSitemaps []string `yaml:"parent_sitemaps"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ListenAddr:   ":5000",
		OutputDir:    "output",
		OutputFormat: "csv",
		Workers:      5,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
