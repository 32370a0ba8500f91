package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/pipeline"
	"github.com/windy-civi/govbot/internal/runlog"
	"github.com/windy-civi/govbot/internal/state"
)

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Run the full pipeline: fetch, classify, build",
	Long: `Run the three pipeline stages in order by re-invoking this binary:

  1. fetch                 clone or update the data repositories
  2. extract-activity-log  stream records into 'classify' over a pipe
  3. build                 render RSS feeds and the HTML index

Fetch and classify failures are warned about and tolerated; a build failure
aborts the run and becomes this command's exit code. Every stage runs in the
directory containing the config file (default: ./govbot.yml).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "govbot.yml"
		if len(args) == 1 {
			configPath = args[0]
		}
		configPath, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		workDir := filepath.Dir(configPath)

		binary, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate own executable: %w", err)
		}

		sinks := []pipeline.EventSink{state.NewSink(state.NewStore(workDir))}

		noLog, _ := cmd.Flags().GetBool("no-log")
		if !noLog {
			dbPath, err := runlog.DefaultPath(workDir)
			if err != nil {
				return fmt.Errorf("run log path: %w", err)
			}
			db, err := runlog.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open run log: %w", err)
			}
			defer db.Close()
			if err := db.Migrate(); err != nil {
				return fmt.Errorf("migrate run log: %w", err)
			}
			sinks = append(sinks, runlog.NewRecorder(db))
		}

		runner := pipeline.NewRunner(pipeline.NewExecRunner(binary), cmd.ErrOrStderr(), sinks...)
		return runner.RunPipeline(configPath)
	},
}

func init() {
	runCmd.Flags().Bool("no-log", false, "Skip recording this run in the run log database")
}

// ExitCode maps a pipeline error to the process exit code: the failed build
// stage's own code where one was observed, 1 otherwise.
func ExitCode(err error) int {
	var abortErr *pipeline.AbortError
	if errors.As(err, &abortErr) && abortErr.ExitCode > 0 {
		return abortErr.ExitCode
	}
	return 1
}
