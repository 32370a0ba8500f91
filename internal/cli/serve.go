package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/runlog"
	"github.com/windy-civi/govbot/internal/state"
	"github.com/windy-civi/govbot/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site and a run-history API locally",
	Long: `Start a local server exposing the built output directory at / and a
read-only JSON API over the run log: /api/runs, /api/runs/{id}/events,
/api/runs/{id}/stream (SSE while a run is in flight), /api/stats, and
/api/state for the last-run snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		outputDir := "docs"
		if cfg, err := config.LoadDefault(cwd); err == nil {
			outputDir = cfg.Build.OutputDir
		}

		dbPath, err := runlog.DefaultPath(cwd)
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

		addr, _ := cmd.Flags().GetString("addr")
		server := web.NewServer(db, state.NewStore(cwd), filepath.Join(cwd, outputDir), addr)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
