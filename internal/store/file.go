package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// FileStore implements AlertStore on a single JSON file for single-node
// deployments. A missing or unreadable file reads as an empty history.
type FileStore struct {
	path string
	log  *slog.Logger
	now  func() time.Time

	mu sync.Mutex
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileLogger sets a custom logger.
func WithFileLogger(l *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.log = l
	}
}

// WithFileClock overrides the time source.
func WithFileClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		path: path,
		log:  slog.Default(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the history directory is usable.
func (s *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("checking history directory: %w", err)
	}
	return nil
}

// load reads the history. Corrupt content is logged and treated as empty so
// a damaged file never blocks new alerts.
func (s *FileStore) load() []domain.Alert {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.Warn("reading alert history failed, treating as empty", "path", s.path, "error", err)
		return nil
	}

	var alerts []domain.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		s.log.Warn("alert history is corrupt, treating as empty", "path", s.path, "error", err)
		return nil
	}
	return alerts
}

func (s *FileStore) save(alerts []domain.Alert) error {
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding alert history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".alerts-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing alert history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing alert history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing alert history: %w", err)
	}
	return nil
}

// AppendAlerts appends alerts, superseding strictly older active alerts for
// the same user, account and metric, then enforces the entry cap.
func (s *FileStore) AppendAlerts(_ context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	for i := range alerts {
		a := alerts[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
			alerts[i].ID = a.ID
		}
		if a.Status == "" {
			a.Status = domain.StatusActive
		}
		if a.Timestamp.IsZero() {
			a.Timestamp = s.now()
		}

		for j := range history {
			h := &history[j]
			if h.Status == domain.StatusActive &&
				h.UserID == a.UserID &&
				h.AccountID == a.AccountID &&
				h.Metric == a.Metric &&
				h.Timestamp.Before(a.Timestamp) {
				resolvedAt := a.Timestamp
				h.Status = domain.StatusResolved
				h.ResolvedAt = &resolvedAt
			}
		}
		history = append(history, a)
	}

	if len(history) > DefaultMaxAlertEntries {
		history = history[len(history)-DefaultMaxAlertEntries:]
	}

	return s.save(history)
}

// QueryAlerts returns alerts matching q, newest first.
func (s *FileStore) QueryAlerts(_ context.Context, q *AlertQuery) ([]domain.Alert, error) {
	s.mu.Lock()
	history := s.load()
	s.mu.Unlock()

	var out []domain.Alert
	for i := range history {
		if q.matches(&history[i]) {
			out = append(out, history[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit := q.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *AlertQuery) matches(a *domain.Alert) bool {
	switch {
	case q.UserID != "" && a.UserID != q.UserID:
		return false
	case q.AccountID != nil && a.AccountID != *q.AccountID:
		return false
	case q.Metric != "" && string(a.Metric) != q.Metric:
		return false
	case q.ActiveOnly && a.Status != domain.StatusActive:
		return false
	case q.Since != nil && a.Timestamp.Before(*q.Since):
		return false
	case q.Until != nil && !a.Timestamp.Before(*q.Until):
		return false
	default:
		return true
	}
}

// ResolveSuperseded resolves shadowed alerts and alerts created before
// rolloverBefore.
func (s *FileStore) ResolveSuperseded(_ context.Context, rolloverBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	now := s.now()

	type key struct {
		user, account string
		metric        domain.Metric
	}
	newest := make(map[key]time.Time)
	for i := range history {
		k := key{history[i].UserID, history[i].AccountID, history[i].Metric}
		if history[i].Timestamp.After(newest[k]) {
			newest[k] = history[i].Timestamp
		}
	}

	n := 0
	for i := range history {
		h := &history[i]
		if h.Status != domain.StatusActive {
			continue
		}
		k := key{h.UserID, h.AccountID, h.Metric}
		if h.Timestamp.Before(newest[k]) || h.Timestamp.Before(rolloverBefore) {
			h.Status = domain.StatusResolved
			h.ResolvedAt = &now
			n++
		}
	}

	if n == 0 {
		return 0, nil
	}
	return n, s.save(history)
}

// PruneAlerts drops alerts older than maxAge and keeps at most maxEntries.
func (s *FileStore) PruneAlerts(_ context.Context, maxAge time.Duration, maxEntries int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	before := len(history)

	if maxAge > 0 {
		cutoff := s.now().Add(-maxAge)
		kept := history[:0]
		for _, a := range history {
			if !a.Timestamp.Before(cutoff) {
				kept = append(kept, a)
			}
		}
		history = kept
	}

	if maxEntries > 0 && len(history) > maxEntries {
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Timestamp.Before(history[j].Timestamp)
		})
		history = history[len(history)-maxEntries:]
	}

	removed := before - len(history)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(history)
}
