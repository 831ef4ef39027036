package dedup

import (
	"context"
	"sync"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// MemoryStore keeps dedup records in process memory for single-instance
// deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.DedupRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.DedupRecord)}
}

// GetDedupRecord returns the record stored under key.
func (s *MemoryStore) GetDedupRecord(_ context.Context, key string) (domain.DedupRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

// ClaimDedupRecord stores rec unless a record for the same key is at least as
// recent as notBefore.
func (s *MemoryStore) ClaimDedupRecord(
	_ context.Context,
	rec domain.DedupRecord,
	notBefore time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.Key]; ok && !existing.SentAt.Before(notBefore) {
		return false, nil
	}
	s.records[rec.Key] = rec
	return true, nil
}

// DeleteDedupRecordsBefore removes records sent before cutoff.
func (s *MemoryStore) DeleteDedupRecordsBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, rec := range s.records {
		if rec.SentAt.Before(cutoff) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

// DeleteDedupRecords removes records for scope, or all when scope is empty.
func (s *MemoryStore) DeleteDedupRecords(_ context.Context, scope string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, rec := range s.records {
		if scope == "" || rec.Scope == scope {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

// ListDedupRecords returns a copy of every record.
func (s *MemoryStore) ListDedupRecords(_ context.Context) ([]domain.DedupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DedupRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}
