package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/ad-alert-tracker/internal/api/client"
)

func runCmd() *cobra.Command {
	var (
		testMode bool
		userID   string
		flow     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger an alert, report or notice run on the server",
		Long: "Evaluates users against their targets and sends alert digests now,\n" +
			"outside the schedule. --flow daily_report sends yesterday's report and\n" +
			"--flow update_notice sends the dashboard refresh notice instead.\n" +
			"Test mode sends marked messages and leaves alert history and dedup\n" +
			"records untouched.",
		Example: `  aat run
  aat run --user u1 --test
  aat run --flow daily_report --user u1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch flow {
			case apiclient.FlowAlerts, apiclient.FlowDailyReport, apiclient.FlowUpdateNotice:
			default:
				return fmt.Errorf("unknown flow %q (want alerts, daily_report or update_notice)", flow)
			}

			res, err := newClient().Run(context.Background(), apiclient.RunRequest{
				TestMode: testMode,
				UserID:   userID,
				Flow:     flow,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			return printRunResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&testMode, "test", false, "send marked test messages")
	cmd.Flags().StringVar(&userID, "user", "", "limit the run to one user ID")
	cmd.Flags().StringVar(&flow, "flow", apiclient.FlowAlerts, "alerts, daily_report or update_notice")

	return cmd
}
