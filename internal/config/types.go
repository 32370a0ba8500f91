package config

// Config is the top-level configuration structure parsed from govbot.yml.
type Config struct {
	Schema        string         `yaml:"$schema"`
	Repos         []string       `yaml:"repos"`
	RemotePattern string         `yaml:"remote_pattern"`
	Scan          []string       `yaml:"scan"`
	Tags          map[string]Tag `yaml:"tags"`
	Build         Build          `yaml:"build"`
}

// Tag defines one topic used to classify legislation.
type Tag struct {
	Description     string   `yaml:"description"`
	Examples        []string `yaml:"examples"`
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

// Build configures feed and index generation. Limit is a pointer so an
// explicit "limit: 0" (unlimited) is distinguishable from an absent field,
// which gets the default.
type Build struct {
	BaseURL    string `yaml:"base_url"`
	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
	Limit      *int   `yaml:"limit"`
}
