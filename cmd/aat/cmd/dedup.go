package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func dedupCmd() *cobra.Command {
	dedupRoot := &cobra.Command{
		Use:   "dedup",
		Short: "Inspect or reset notification dedup records",
		Long: "Dedup records stop the same metric from being notified twice within\n" +
			"one window. Resetting a scope lets its alerts be sent again.",
		Example: `  aat dedup
  aat dedup --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := newClient().DedupStatus(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), status)
			}
			return printDedupStatus(cmd.OutOrStdout(), status)
		},
	}

	dedupRoot.AddCommand(dedupResetCmd())

	return dedupRoot
}

func dedupResetCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove dedup records",
		Long: "Removes the dedup records of one scope, or every record when no scope\n" +
			"is given. A scope is a user ID, or user/account for additional accounts.",
		Example: `  aat dedup reset --scope u1
  aat dedup reset --scope u1/222
  aat dedup reset`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := newClient().ResetDedup(context.Background(), scope)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d dedup record(s).\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "user ID or user/account to reset")

	return cmd
}
