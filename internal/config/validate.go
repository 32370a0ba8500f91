package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/windy-civi/govbot/internal/locale"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if len(cfg.Repos) == 0 {
		errs = append(errs, ValidationError{Field: "repos", Message: "at least one repository is required"})
	}

	seen := make(map[string]bool)
	for i, repo := range cfg.Repos {
		field := fmt.Sprintf("repos[%d]", i)
		if repo == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is empty"})
			continue
		}
		if seen[repo] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate repository %q", repo)})
		}
		seen[repo] = true
		if repo != "all" && !locale.IsKnown(repo) {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown jurisdiction %q", repo)})
		}
	}

	if cfg.RemotePattern != "" && !strings.Contains(cfg.RemotePattern, "%s") {
		errs = append(errs, ValidationError{Field: "remote_pattern", Message: "must contain a %s placeholder"})
	}

	for i, pattern := range cfg.Scan {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scan[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q", pattern),
			})
		}
	}

	for name, tag := range cfg.Tags {
		prefix := "tags." + name
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{Field: "tags", Message: "tag name is empty"})
			continue
		}
		if strings.ContainsAny(name, `/\`) {
			errs = append(errs, ValidationError{Field: prefix, Message: "tag name must not contain path separators"})
		}
		if tag.Description == "" && len(tag.IncludeKeywords) == 0 && len(tag.Examples) == 0 {
			errs = append(errs, ValidationError{Field: prefix, Message: "tag has no description, examples, or include_keywords"})
		}
		for i, kw := range tag.IncludeKeywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.include_keywords[%d]", prefix, i),
					Message: "is empty",
				})
			}
		}
		for i, kw := range tag.ExcludeKeywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.exclude_keywords[%d]", prefix, i),
					Message: "is empty",
				})
			}
		}
	}

	if cfg.Build.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "build.base_url", Message: "is required"})
	}

	return errs
}
