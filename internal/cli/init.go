package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windy-civi/govbot/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create govbot.yml and supporting files in the current directory",
	Long: `Generate a starter project: govbot.yml, a .gitignore entry for the
.govbot data directory, and a GitHub Actions workflow that runs the pipeline
daily. Existing govbot.yml files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		if _, err := os.Stat(filepath.Join(cwd, "govbot.yml")); err == nil {
			return fmt.Errorf("govbot.yml already exists, refusing to overwrite")
		}

		choices := scaffold.DefaultChoices()
		if repos, _ := cmd.Flags().GetStringSlice("repos"); len(repos) > 0 {
			choices.Repos = repos
		}
		if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
			choices.BaseURL = baseURL
		}
		if noExample, _ := cmd.Flags().GetBool("no-example-tag"); noExample {
			choices.IncludeExampleTag = false
		}

		session := scaffold.FromChoices(choices)
		if err := session.WriteFiles(cwd, cmd.ErrOrStderr()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "\nSetup complete! Edit govbot.yml to customize, then run 'govbot run'.")
		return nil
	},
}

func init() {
	initCmd.Flags().StringSlice("repos", nil, "Jurisdictions to track (default: all)")
	initCmd.Flags().String("base-url", "", "Base URL for published feeds")
	initCmd.Flags().Bool("no-example-tag", false, "Skip the example education tag")
}
