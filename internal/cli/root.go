package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "govbot",
	Short: "govbot — track state legislation and publish RSS feeds",
	Long: `govbot runs a three-stage pipeline over scraped legislative data:
fetch per-jurisdiction data repositories, tag bills and hearings against
your topics, and build RSS feeds plus an HTML index for publishing.

Configuration lives in govbot.yml; working data is kept under .govbot/
next to it (cloned repos, tagged records, run history).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}
