package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/classify"
	"github.com/windy-civi/govbot/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Tag activity log records read from stdin",
	Long: `Read newline-delimited activity records from stdin, match each one
against the tags configured in govbot.yml, and write the matches to
.govbot/tagged/<tag>.json. In a pipeline run stdin is the output of
'extract-activity-log'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		cfg, err := config.LoadDefault(cwd)
		if err != nil {
			return err
		}

		classifier := classify.New(cfg.Tags)
		stats, err := classifier.Run(cmd.InOrStdin(), filepath.Join(cwd, classify.TaggedDir))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Tagged %d of %d records\n", stats.Matched, stats.Records)
		tags := make([]string, 0, len(stats.PerTag))
		for tag := range stats.PerTag {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %d\n", tag, stats.PerTag[tag])
		}
		return nil
	},
}
