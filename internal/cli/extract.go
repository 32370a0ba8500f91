package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/activity"
	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract-activity-log",
	Short: "Stream the activity log from fetched repositories",
	Long: `Scan every repository under .govbot/repos for bill and event payloads
and write one JSON record per line to stdout. In a pipeline run this output
is piped straight into 'classify'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		globs := []string{"**/*.json"}
		if cfg, err := config.LoadDefault(cwd); err == nil {
			globs = cfg.Scan
		}

		extractor := activity.NewExtractor(filepath.Join(cwd, pipeline.RepoStoreDir), globs, cmd.ErrOrStderr())
		count, err := extractor.Run(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Extracted %d records\n", count)
		return nil
	},
}
