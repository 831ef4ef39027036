package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/config"
	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
	"github.com/donaldgifford/ad-alert-tracker/internal/notify"
	"github.com/donaldgifford/ad-alert-tracker/internal/store"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
history:
  path: ` + filepath.Join(dir, "alert_history.json") + `
users:
  - user_id: u1
    goal_type: toC_newsletter
    meta_account_id: "111"
    meta_access_token: token
    alerts_enabled: true
    chatwork_token: cw-token
    chatwork_room_id: room-1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestBuildComponents_FileHistory(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	c, err := buildComponents(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.IsType(t, &store.FileStore{}, c.alerts)
	assert.Nil(t, c.jobs)
	assert.Equal(t, "Asia/Tokyo", c.loc.String())
	assert.Equal(t, "toC_newsletter", c.table.DefaultGoal)
	assert.NotNil(t, c.engine)
	require.NoError(t, c.health.Ping(context.Background()))
}

func TestBuildComponents_BadRulesPath(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	cfg.Rules.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildComponents(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading goal table")
}

func TestNewDedupStore(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Dedup: config.DedupConfig{Backend: config.DedupMemory}}
		records, closeFn, err := newDedupStore(context.Background(), cfg, nil, quietLogger())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &dedup.MemoryStore{}, records)
	})

	t.Run("postgres without database", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Dedup: config.DedupConfig{Backend: config.DedupPostgres}}
		_, _, err := newDedupStore(context.Background(), cfg, nil, quietLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires database.host")
	})

	t.Run("redis", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Dedup: config.DedupConfig{Backend: config.DedupRedis, Retention: time.Hour},
			Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "test:"},
		}
		records, closeFn, err := newDedupStore(context.Background(), cfg, nil, quietLogger())
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &dedup.RedisStore{}, records)

		now := time.Now()
		ok, err := records.ClaimDedupRecord(context.Background(), domain.DedupRecord{
			Key:    "ctr_u1_2026031009",
			Metric: domain.MetricCTR,
			Scope:  "u1",
			SentAt: now,
		}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("test:ctr_u1_2026031009"))
	})
}

func TestNewServer_Routes(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	c, err := buildComponents(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	e := newServer(cfg, c)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/goals", http.StatusOK},
		{http.MethodGet, "/api/v1/alerts?user_id=u1", http.StatusOK},
		{http.MethodGet, "/api/v1/dedup", http.StatusOK},
		// Job history needs Postgres.
		{http.MethodGet, "/api/v1/jobs", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestNewNotifier_NoBackendReportsUndelivered(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	n := newNotifier(cfg, quietLogger())

	err := n.Send(context.Background(), notify.Destination{}, notify.Message{Title: "t", Body: "b"})
	require.ErrorIs(t, err, notify.ErrNoDestination)
}
