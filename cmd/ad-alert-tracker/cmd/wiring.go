package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/ad-alert-tracker/internal/api/handlers"
	"github.com/donaldgifford/ad-alert-tracker/internal/api/middleware"
	"github.com/donaldgifford/ad-alert-tracker/internal/config"
	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
	"github.com/donaldgifford/ad-alert-tracker/internal/meta"
	"github.com/donaldgifford/ad-alert-tracker/internal/notify"
	"github.com/donaldgifford/ad-alert-tracker/internal/store"
	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
)

const notifyTimeout = 30 * time.Second

// components holds everything the serve and run commands share.
type components struct {
	log    *slog.Logger
	loc    *time.Location
	table  *rules.GoalTable
	alerts store.AlertStore
	health handlers.Pinger
	// jobs is nil unless Postgres is configured.
	jobs   store.JobStore
	dedup  *dedup.Manager
	engine *engine.Engine
	// sched is set by serve once the scheduler exists.
	sched   *engine.Scheduler
	closers []func()
}

// Close releases connections in reverse order of creation.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*components, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	table, err := rules.LoadGoalTable(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("loading goal table: %w", err)
	}

	c := &components{log: logger, loc: loc, table: table}

	var pg *store.PostgresStore
	if cfg.Database.Enabled() {
		pg, err = store.NewPostgresStore(ctx, cfg.Database.DSN(), store.WithPoolSize(cfg.Database.PoolSize))
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		c.closers = append(c.closers, pg.Close)
		c.alerts, c.health, c.jobs = pg, pg, pg
	} else {
		fs := store.NewFileStore(cfg.History.Path, store.WithFileLogger(logger))
		c.alerts, c.health = fs, fs
	}

	records, closeRecords, err := newDedupStore(ctx, cfg, pg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeRecords)

	c.dedup = dedup.NewManager(records,
		dedup.WithLogger(logger),
		dedup.WithLocation(loc),
		dedup.WithWindow(cfg.Dedup.Window),
		dedup.WithRetention(cfg.Dedup.Retention),
		dedup.WithMode(dedup.Mode(cfg.Dedup.Mode)),
	)

	// Reports and token notices go out once per calendar day regardless of
	// the alert bucket mode.
	reportDedup := dedup.NewManager(records,
		dedup.WithLogger(logger),
		dedup.WithLocation(loc),
		dedup.WithRetention(max(cfg.Dedup.Retention, 48*time.Hour)),
		dedup.WithMode(dedup.ModeDaily),
	)

	c.engine = engine.NewEngine(
		c.alerts,
		newMetricSource(cfg, loc, logger),
		c.dedup,
		newNotifier(cfg, logger),
		engine.StaticUsers(cfg.Users),
		engine.WithLogger(logger),
		engine.WithLocation(loc),
		engine.WithGoalTable(table),
		engine.WithSendDelay(cfg.Notifications.SendDelay),
		engine.WithLookbackDays(cfg.Meta.LookbackDays),
		engine.WithDashboardURL(cfg.Notifications.DashboardURL),
		engine.WithHistoryRetention(cfg.History.MaxAge, cfg.History.MaxEntries),
		engine.WithReportDedup(reportDedup),
		engine.WithTokenNoticeDays(cfg.Notifications.TokenNoticeDays),
	)

	return c, nil
}

// newDedupStore opens the configured dedup backend. The returned func closes
// whatever connection the backend owns.
func newDedupStore(
	ctx context.Context,
	cfg *config.Config,
	pg *store.PostgresStore,
	logger *slog.Logger,
) (dedup.Store, func(), error) {
	switch cfg.Dedup.Backend {
	case config.DedupPostgres:
		if pg == nil {
			return nil, nil, errors.New("dedup backend postgres requires database.host")
		}
		return pg, func() {}, nil

	case config.DedupRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Dedup fails open, so an unreachable Redis is not fatal.
			logger.Warn("redis unreachable; alerts may repeat until it recovers",
				"addr", cfg.Redis.Addr, "error", err)
		}
		records := dedup.NewRedisStore(client, cfg.Redis.Prefix, cfg.Dedup.Retention)
		return records, func() { _ = client.Close() }, nil

	default:
		return dedup.NewMemoryStore(), func() {}, nil
	}
}

func newMetricSource(cfg *config.Config, loc *time.Location, logger *slog.Logger) *meta.InsightsClient {
	limiter := meta.NewRateLimiter(
		cfg.Meta.RateLimit.PerSecond,
		cfg.Meta.RateLimit.Burst,
		cfg.Meta.RateLimit.DailyLimit,
	)
	return meta.NewInsightsClient(
		meta.WithGraphURL(cfg.Meta.GraphURL),
		meta.WithAPIVersion(cfg.Meta.APIVersion),
		meta.WithHTTPClient(&http.Client{Timeout: cfg.Meta.Timeout}),
		meta.WithRateLimiter(limiter),
		meta.WithLocation(loc),
		meta.WithLogger(logger),
	)
}

// newNotifier routes to Chatwork or Discord per destination. Destinations
// with neither fall back to the configured Discord webhook, or are dropped.
func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	hc := &http.Client{Timeout: notifyTimeout}

	chatwork := notify.NewChatworkNotifier(
		notify.WithChatworkBaseURL(cfg.Notifications.Chatwork.BaseURL),
		notify.WithChatworkClient(hc),
	)
	discord := notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL, notify.WithHTTPClient(hc))

	var fallback notify.Notifier = notify.NewNoOpNotifier(logger)
	if cfg.Notifications.Discord.WebhookURL != "" {
		fallback = discord
	}
	return notify.NewRouter(chatwork, discord, fallback)
}

// newServer builds the Echo server with health, metrics and API routes.
func newServer(cfg *config.Config, c *components) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(
		middleware.RequestLog(c.log),
		middleware.Metrics(),
		middleware.Recovery(c.log),
	)

	health := handlers.NewHealthHandler(c.health)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("ad-alert-tracker API", Version))
	handlers.RegisterAlertRoutes(api, handlers.NewAlertsHandler(c.alerts, c.loc))
	handlers.RegisterRunRoutes(api, handlers.NewRunHandler(c.engine))
	handlers.RegisterGoalRoutes(api, handlers.NewGoalsHandler(c.table))
	handlers.RegisterDedupRoutes(api, handlers.NewDedupHandler(c.dedup))
	if c.jobs != nil {
		var opts []handlers.JobsOption
		if c.sched != nil {
			opts = append(opts, handlers.WithSchedulerState(c.sched))
		}
		handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(c.jobs, opts...))
	}

	return e
}
