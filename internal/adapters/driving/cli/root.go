// Package cli provides the cobra command tree for the teamhub binary.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "teamhub",
	Short: "Team knowledge hub backend",
	Long: `teamhub is a team knowledge-base backend. Documents get an
AI-generated summary, tags, and embedding on write; teammates run keyword
search, semantic search, and question answering grounded on document
context.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to TOML config file (default: built-in defaults plus environment)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
