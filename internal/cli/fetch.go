package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/fetch"
	"github.com/windy-civi/govbot/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [repo...]",
	Short: "Clone or update the data repositories",
	Long: `Fetch legislative data repositories into .govbot/repos.

With repository arguments, each named repository is cloned (the literal
"all" expands to every supported jurisdiction). Without arguments, every
repository already present is updated with a fast-forward pull.

Failed repositories are reported and skipped; the exit code is nonzero if
any failed, with the successful ones left in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		pattern := config.DefaultRemotePattern
		if cfg, err := config.LoadDefault(cwd); err == nil {
			pattern = cfg.RemotePattern
		}

		storeDir := filepath.Join(cwd, pipeline.RepoStoreDir)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			return fmt.Errorf("create repo store: %w", err)
		}
		mgr := fetch.NewManager(&fetch.ExecGit{}, storeDir, pattern, cmd.ErrOrStderr())

		var results []fetch.RepoResult
		if len(args) > 0 {
			results = mgr.Clone(args)
		} else {
			results, err = mgr.Update()
			if err != nil {
				return err
			}
		}

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d repositories failed", failed, len(results))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetched %d repositories\n", len(results))
		return nil
	},
}
