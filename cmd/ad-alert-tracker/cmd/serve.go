package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/ad-alert-tracker/internal/config"
	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
	"github.com/donaldgifford/ad-alert-tracker/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	console := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})
	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(slogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildComponents(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer app.Close()

	schedOpts := []engine.SchedulerOption{
		engine.WithLockTTL(cfg.Schedule.LockTTL),
		engine.WithSchedulerLogger(slogger),
	}
	if app.jobs != nil {
		schedOpts = append(schedOpts, engine.WithJobStore(app.jobs))
	}
	sched, err := engine.NewScheduler(app.engine, engine.Schedule{
		DailyAlerts:  cfg.Schedule.DailyAlerts,
		RepeatAlerts: cfg.Schedule.RepeatAlerts,
		Maintenance:  cfg.Schedule.Maintenance,
	}, schedOpts...)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	app.sched = sched

	e := newServer(cfg, app)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	console.Info("starting server",
		"addr", addr,
		"users", len(cfg.Users),
		"dedup", cfg.Dedup.Backend,
		"postgres", cfg.Database.Enabled(),
	)
	sched.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		console.Error("server error", "err", err)
	}

	console.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		console.Warn("scheduled job still running at shutdown")
	}

	console.Info("server stopped")
	return nil
}
