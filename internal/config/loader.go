package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRemotePattern is the clone URL template for data repositories.
// The single %s is replaced with a repository identifier.
const DefaultRemotePattern = "https://github.com/windy-civi/%s.git"

// Load reads and parses a govbot configuration from the given YAML file path.
// After parsing, it applies defaults for fields the file doesn't set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches dir for a govbot config and loads the first one found.
// Search order: govbot.yml, govbot.yaml.
func LoadDefault(dir string) (*Config, error) {
	candidates := []string{"govbot.yml", "govbot.yaml"}

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no govbot config found in %s (searched: %v)", dir, candidates)
}

// applyDefaults fills in the remote pattern, scan globs, and build settings
// for configs that don't set their own values. Only an absent build limit
// gets the default; an explicit zero (or negative) limit means unlimited
// entries per feed.
func applyDefaults(cfg *Config) {
	if cfg.RemotePattern == "" {
		cfg.RemotePattern = DefaultRemotePattern
	}
	if len(cfg.Scan) == 0 {
		cfg.Scan = []string{"**/*.json"}
	}

	b := &cfg.Build
	if b.OutputDir == "" {
		b.OutputDir = "docs"
	}
	if b.OutputFile == "" {
		b.OutputFile = "feed.xml"
	}
	if b.Limit == nil {
		n := 15
		b.Limit = &n
	}
}
