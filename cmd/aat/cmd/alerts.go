package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/ad-alert-tracker/internal/api/client"
)

func alertsCmd() *cobra.Command {
	alertsRoot := &cobra.Command{
		Use:   "alerts",
		Short: "Browse alert history",
		Long: "Browse recorded alerts and the confirmation items and improvement\n" +
			"strategies attached to a user's active alerts for one day.",
	}

	alertsRoot.AddCommand(
		alertsListCmd(),
		alertsConfirmationsCmd(),
		alertsImprovementsCmd(),
	)

	return alertsRoot
}

func alertsListCmd() *cobra.Command {
	var f apiclient.AlertFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded alerts, newest first",
		Example: `  # Everything recorded
  aat alerts list

  # Active CTR alerts of one user since yesterday
  aat alerts list --user u1 --metric ctr --active --since 2026-03-09

  # Only the primary account
  aat alerts list --user u1 --account primary --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alerts, err := newClient().ListAlerts(context.Background(), f)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), alerts)
			}
			if len(alerts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No alerts found.")
				return nil
			}
			return printAlertsTable(cmd.OutOrStdout(), alerts)
		},
	}

	cmd.Flags().StringVar(&f.UserID, "user", "", "filter by user ID")
	cmd.Flags().StringVar(&f.AccountID, "account", "", "filter by ad account ID (\"primary\" for the main account)")
	cmd.Flags().StringVar(&f.Metric, "metric", "", "filter by metric (ctr, cpa, cpm, cv, budget_rate, ...)")
	cmd.Flags().BoolVar(&f.ActiveOnly, "active", false, "only alerts still active")
	cmd.Flags().StringVar(&f.Since, "since", "", "only alerts on or after this day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum number of alerts (server default 100)")

	return cmd
}

// dayFlags are shared by the per-day projection commands.
type dayFlags struct {
	user    string
	account string
	date    string
}

func (d *dayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.user, "user", "", "user ID (required)")
	cmd.Flags().StringVar(&d.account, "account", "", "ad account ID (\"primary\" for the main account)")
	cmd.Flags().StringVar(&d.date, "date", "", "day to report on (YYYY-MM-DD, default today)")
	cobra.CheckErr(cmd.MarkFlagRequired("user"))
}

func alertsConfirmationsCmd() *cobra.Command {
	var d dayFlags

	cmd := &cobra.Command{
		Use:   "confirmations",
		Short: "List the check items of a day's active alerts",
		Example: `  aat alerts confirmations --user u1
  aat alerts confirmations --user u1 --date 2026-03-10 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := newClient().Confirmations(context.Background(), d.user, d.account, d.date)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No confirmation items.")
				return nil
			}
			return printConfirmationsTable(cmd.OutOrStdout(), items)
		},
	}
	d.register(cmd)

	return cmd
}

func alertsImprovementsCmd() *cobra.Command {
	var d dayFlags

	cmd := &cobra.Command{
		Use:   "improvements",
		Short: "List the improvement strategies of a day's active alerts",
		Example: `  aat alerts improvements --user u1
  aat alerts improvements --user u1 --account 222 --date 2026-03-10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategies, err := newClient().Improvements(context.Background(), d.user, d.account, d.date)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), strategies)
			}
			if len(strategies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No improvement strategies.")
				return nil
			}
			return printImprovements(cmd.OutOrStdout(), strategies)
		},
	}
	d.register(cmd)

	return cmd
}
