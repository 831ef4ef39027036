package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func jobsCmd() *cobra.Command {
	jobsRoot := &cobra.Command{
		Use:   "jobs",
		Short: "View scheduler job history",
		Long: "View scheduled jobs: daily_alerts (alerts, then the daily report),\n" +
			"repeat_alerts (alerts, then the update notice) and maintenance.\n" +
			"Each run records status, duration, messages sent and any errors.\n" +
			"Job history is only kept when the server runs with Postgres.",
	}

	jobsRoot.AddCommand(
		jobsListCmd(),
		jobsHistoryCmd(),
	)

	return jobsRoot
}

func jobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled jobs with their last and next run",
		Long: "Lists every scheduled job with its latest recorded run and next fire time.\n" +
			"SENT shows alerts/reports/undelivered/errors from the last run of the\n" +
			"serving process.",
		Example: `  aat jobs list
  aat jobs list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := newClient().ListJobs(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), jobs)
			}
			return printJobStatusTable(cmd.OutOrStdout(), jobs)
		},
	}
}

func jobsHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <job_name>",
		Short: "Show run history for a job",
		Args:  cobra.ExactArgs(1),
		Example: `  aat jobs history daily_alerts
  aat jobs history maintenance --limit 50 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := newClient().GetJobHistory(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No runs found for job %q.\n", args[0])
				return nil
			}
			return printJobRunsTable(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of runs (server default 20)")

	return cmd
}
