package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func goalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "List goal types and their default rules",
		Example: `  aat goals
  aat goals --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			goals, err := newClient().ListGoals(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), goals)
			}
			return printGoalsTable(cmd.OutOrStdout(), goals)
		},
	}
}
