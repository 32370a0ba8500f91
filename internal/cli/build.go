package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/classify"
	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/feed"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build RSS feeds and the HTML index from tagged records",
	Long: `Render the tagged records under .govbot/tagged into one RSS feed per
tag, a combined feed, and an index.html, all written to the configured
output directory (default: docs). A missing tagged directory produces empty
feeds rather than an error, so present-but-stale data still publishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		cfg, err := config.LoadDefault(cwd)
		if err != nil {
			return err
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "config: %v\n", e)
			}
			return fmt.Errorf("config has %d validation errors", len(errs))
		}

		tagged, err := classify.LoadDir(filepath.Join(cwd, classify.TaggedDir))
		if err != nil {
			return err
		}

		builder := feed.NewBuilder(cfg.Build)
		summary, err := builder.Build(tagged, filepath.Join(cwd, cfg.Build.OutputDir))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Built %d feeds (%d entries) in %s\n",
			summary.Feeds, summary.Items, cfg.Build.OutputDir)
		return nil
	},
}
