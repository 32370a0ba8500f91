package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/analytics"
	"github.com/windy-civi/govbot/internal/runlog"
	"github.com/windy-civi/govbot/internal/state"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	abortedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusLabel(status string) string {
	switch status {
	case "done":
		return doneStyle.Render(status)
	case "aborted":
		return abortedStyle.Render(status)
	default:
		return runningStyle.Render(status)
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run and recent run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		w := cmd.OutOrStdout()

		snap, err := state.NewStore(cwd).Load()
		if err != nil {
			return fmt.Errorf("load state snapshot: %w", err)
		}
		if snap.LastRun == nil {
			fmt.Fprintln(w, "No runs recorded yet. Start one with 'govbot run'.")
			return nil
		}
		printLastRun(w, snap.LastRun)

		dbPath, err := runlog.DefaultPath(cwd)
		if err != nil {
			return err
		}
		db, err := runlog.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate run log: %w", err)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.RecentRuns(limit)
		if err != nil {
			return err
		}
		printRuns(w, runs)

		if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
			if err := printStats(w, db); err != nil {
				return err
			}
		}
		return nil
	},
}

func printLastRun(w io.Writer, run *state.RunRecord) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Last run:"), statusLabel(run.Status))
	fmt.Fprintf(w, "  mode %s, started %s", run.Mode, run.StartedAt)
	if run.FinishedAt != "" {
		fmt.Fprintf(w, ", finished %s", run.FinishedAt)
	}
	fmt.Fprintln(w)
	for _, stage := range run.Stages {
		mark := doneStyle.Render("✓")
		detail := ""
		if !stage.Succeeded {
			mark = abortedStyle.Render("✗")
			switch {
			case stage.ExitCode != nil:
				detail = fmt.Sprintf(" (exit %d)", *stage.ExitCode)
			case stage.FinishedAt == "":
				mark = runningStyle.Render("…")
			default:
				detail = " (did not start)"
			}
		}
		fmt.Fprintf(w, "  %s %s%s\n", mark, stage.Name, dimStyle.Render(detail))
	}
	if run.Status == "aborted" {
		fmt.Fprintf(w, "  aborted at %s with exit code %d\n", run.AbortedAt, run.ExitCode)
	}
	fmt.Fprintln(w)
}

func printRuns(w io.Writer, runs []runlog.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "Run log is empty.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Recent runs:"))
	fmt.Fprintf(w, "  %-10s %-8s %-9s %-20s %s\n", "ID", "MODE", "STATUS", "STARTED", "REPOS")
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		repos := strings.Join(run.Repos, " ")
		if run.Mode == "update" {
			repos = dimStyle.Render("(existing)")
		}
		fmt.Fprintf(w, "  %-10s %-8s %-9s %-20s %s\n", id, run.Mode, statusLabel(run.Status), run.StartedAt, repos)
	}
	fmt.Fprintln(w)
}

func printStats(w io.Writer, db *runlog.DB) error {
	overview, err := analytics.QueryOverview(db, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, headerStyle.Render("Stats:"))
	fmt.Fprintf(w, "  %d runs: %d done, %d aborted, %d running\n",
		overview.Total, overview.Done, overview.Aborted, overview.Running)

	reliability, err := analytics.QueryStageReliability(db, "")
	if err != nil {
		return err
	}
	for _, r := range reliability {
		fmt.Fprintf(w, "  %-10s %5.1f%% success over %d attempts", r.Stage, r.SuccessPct, r.Total)
		if r.SpawnFailures > 0 {
			fmt.Fprintf(w, ", %d never started", r.SpawnFailures)
		}
		fmt.Fprintln(w)
	}

	durations, err := analytics.QueryStageDurations(db, "")
	if err != nil {
		return err
	}
	for _, d := range durations {
		fmt.Fprintf(w, "  %-10s avg %.1fs, p50 %.1fs, p95 %.1fs\n", d.Stage, d.Avg, d.P50, d.P95)
	}
	return nil
}

func init() {
	statusCmd.Flags().Int("limit", 10, "Number of recent runs to list")
	statusCmd.Flags().Bool("stats", false, "Show per-stage reliability and duration stats")
}
