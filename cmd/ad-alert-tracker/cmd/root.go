// Package cmd implements the CLI commands for ad-alert-tracker.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ad-alert-tracker",
	Short: "Watch Meta ad accounts and alert on missed targets",
	Long: "A service that pulls daily Meta Ads insights, evaluates them against per-goal " +
		"targets, and sends deduplicated alert digests to Chatwork or Discord.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
