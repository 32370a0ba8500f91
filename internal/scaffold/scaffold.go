// Package scaffold generates the files a new govbot project needs: the
// config, a .gitignore entry for the data directory, and a GitHub Actions
// workflow that runs the pipeline on a schedule.
package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/windy-civi/govbot/internal/locale"
)

// Choices captures the setup decisions a project starts from.
type Choices struct {
	Repos             []string
	IncludeExampleTag bool
	BaseURL           string
}

// DefaultChoices returns the non-interactive defaults: track everything,
// start with the example tag.
func DefaultChoices() Choices {
	return Choices{
		Repos:             []string{"all"},
		IncludeExampleTag: true,
		BaseURL:           "https://example.com",
	}
}

// Session holds everything a setup run produces: the transcript a user
// would see plus the generated file contents. Building it is pure, so the
// whole session can be asserted against in tests.
type Session struct {
	Display     string
	ConfigYML   string
	WorkflowYML string
}

// FromChoices renders a complete setup session from a set of choices.
func FromChoices(choices Choices) *Session {
	var d strings.Builder

	d.WriteString("Welcome to govbot! Let's set up your project.\n\n")

	allOption := fmt.Sprintf("All states (%d jurisdictions)", len(locale.All()))
	d.WriteString("? What data sources do you want to track?\n")
	if len(choices.Repos) == 1 && choices.Repos[0] == "all" {
		fmt.Fprintf(&d, "> %s\n", allOption)
		d.WriteString("  Select specific states\n")
	} else {
		fmt.Fprintf(&d, "  %s\n", allOption)
		d.WriteString("> Select specific states\n\n")
		d.WriteString("Available states/jurisdictions:\n")
		codes := locale.All()
		for start := 0; start < len(codes); start += 10 {
			end := start + 10
			if end > len(codes) {
				end = len(codes)
			}
			fmt.Fprintf(&d, "  %s\n", strings.Join(codes[start:end], ", "))
		}
		fmt.Fprintf(&d, "\n? Enter state codes separated by spaces: %s\n", strings.Join(choices.Repos, " "))
	}
	d.WriteString("\n")

	d.WriteString("Tags let govbot categorize legislation by topics you care about.\n\n")
	d.WriteString("? How would you like to set up tags?\n")
	if choices.IncludeExampleTag {
		d.WriteString("> Use the example \"education\" tag to start\n")
		d.WriteString("  I'll create my own tags later\n")
	} else {
		d.WriteString("  Use the example \"education\" tag to start\n")
		d.WriteString("> I'll create my own tags later\n")
	}
	d.WriteString("\n")

	d.WriteString("Publishing is configured for RSS feeds by default.\n")
	d.WriteString("Your feeds will be generated in the \"docs\" directory.\n\n")
	fmt.Fprintf(&d, "? Base URL for your feeds: %s\n\n", choices.BaseURL)

	d.WriteString("  ✓ Created govbot.yml\n")
	d.WriteString("  ✓ Created .gitignore with .govbot\n")
	d.WriteString("  ✓ Created .github/workflows/build.yml\n\n")
	d.WriteString("Setup complete! Run 'govbot run' to start the pipeline.\n")

	return &Session{
		Display:     d.String(),
		ConfigYML:   GenerateConfig(choices.Repos, choices.IncludeExampleTag, choices.BaseURL),
		WorkflowYML: workflowYML,
	}
}

// GenerateConfig renders govbot.yml from the setup choices. Pure.
func GenerateConfig(repos []string, includeExampleTag bool, baseURL string) string {
	var y strings.Builder

	y.WriteString("# Govbot Configuration\n")
	y.WriteString("# Schema: https://raw.githubusercontent.com/windy-civi/toolkit/main/schemas/govbot.schema.json\n")
	y.WriteString("$schema: https://raw.githubusercontent.com/windy-civi/toolkit/main/schemas/govbot.schema.json\n\n")

	y.WriteString("repos:\n")
	for _, repo := range repos {
		fmt.Fprintf(&y, "  - %s\n", repo)
	}
	y.WriteString("\n")

	y.WriteString("tags:\n")
	if includeExampleTag {
		y.WriteString(exampleTagYML)
	} else {
		y.WriteString("  # Add your tags here. Example:\n")
		y.WriteString("  # my_topic:\n")
		y.WriteString("  #   description: |\n")
		y.WriteString("  #     Legislation related to ...\n")
		y.WriteString("  #   examples:\n")
		y.WriteString("  #     - \"Example bill description\"\n")
		y.WriteString("  {}\n")
	}
	y.WriteString("\n")

	y.WriteString("build:\n")
	fmt.Fprintf(&y, "  base_url: %q\n", baseURL)
	y.WriteString("  output_dir: \"docs\"\n")
	y.WriteString("  output_file: \"feed.xml\"\n")

	return y.String()
}

// WriteFiles writes the generated project files under dir, reporting each
// file to out. The .gitignore entry is appended idempotently.
func (s *Session) WriteFiles(dir string, out io.Writer) error {
	logf := func(format string, args ...interface{}) {
		if out != nil {
			fmt.Fprintf(out, format, args...)
		}
	}

	configPath := filepath.Join(dir, "govbot.yml")
	if err := os.WriteFile(configPath, []byte(s.ConfigYML), 0o644); err != nil {
		return fmt.Errorf("write govbot.yml: %w", err)
	}
	logf("  ✓ Created govbot.yml\n")

	if err := writeGitignore(dir, logf); err != nil {
		return err
	}

	workflowDir := filepath.Join(dir, ".github", "workflows")
	if err := os.MkdirAll(workflowDir, 0o755); err != nil {
		return fmt.Errorf("create workflow directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workflowDir, "build.yml"), []byte(s.WorkflowYML), 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	logf("  ✓ Created .github/workflows/build.yml\n")

	return nil
}

// writeGitignore makes sure .gitignore lists the .govbot data directory,
// creating the file or appending the entry as needed.
func writeGitignore(dir string, logf func(string, ...interface{})) error {
	path := filepath.Join(dir, ".gitignore")
	const entry = ".govbot\n"

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(entry), 0o644); err != nil {
			return fmt.Errorf("write .gitignore: %w", err)
		}
		logf("  ✓ Created .gitignore with .govbot\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read .gitignore: %w", err)
	}

	if strings.Contains(string(data), ".govbot") {
		logf("  ✓ .gitignore already contains .govbot\n")
		return nil
	}

	content := string(data)
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}
	logf("  ✓ Updated .gitignore to include .govbot\n")
	return nil
}
