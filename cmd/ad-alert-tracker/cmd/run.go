package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/ad-alert-tracker/internal/config"
	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
	"github.com/donaldgifford/ad-alert-tracker/pkg/logger"
)

var (
	runTestMode bool
	runUserID   string
	runFlow     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one alert evaluation and exit",
	Long: "Evaluates every configured user once, sends the resulting digests and prints " +
		"the run summary. Suitable for an external cron in place of serve.\n\n" +
		"--flow selects what is sent: alerts (default), daily_report or update_notice.",
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runTestMode, "test", false, "send a marked test digest without touching history or dedup")
	runCmd.Flags().StringVar(&runUserID, "user", "", "limit the run to one user ID")
	runCmd.Flags().StringVar(&runFlow, "flow", "alerts", "alerts, daily_report or update_notice")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	console := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildComponents(ctx, cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}
	defer app.Close()

	flow, err := flowRunner(app.engine, runFlow)
	if err != nil {
		return err
	}

	summary, runErr := flow(ctx, engine.JobOptions{
		TestMode: runTestMode,
		UserID:   runUserID,
	})
	if summary != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if runErr != nil {
		console.Error("run finished with errors", "flow", runFlow, "err", runErr)
		return runErr
	}

	console.Info("run complete", "flow", runFlow)
	return nil
}

func flowRunner(eng *engine.Engine, flow string) (func(context.Context, engine.JobOptions) (*engine.RunSummary, error), error) {
	switch flow {
	case "", "alerts":
		return eng.RunAlerts, nil
	case "daily_report":
		return eng.RunDailyReport, nil
	case "update_notice":
		return eng.RunUpdateNotice, nil
	default:
		return nil, fmt.Errorf("unknown flow %q (want alerts, daily_report or update_notice)", flow)
	}
}
