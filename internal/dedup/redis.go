package dedup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// DefaultRedisPrefix namespaces dedup keys in a shared Redis.
const DefaultRedisPrefix = "aat:dedup:"

// claimScript writes the record only when no record for the key was sent at
// or after ARGV[1]. Returns 1 when the claim succeeds.
var claimScript = redis.NewScript(`
local sent = redis.call('HGET', KEYS[1], 'sent_at')
if sent and tonumber(sent) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'metric', ARGV[2], 'scope', ARGV[3], 'sent_at', ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisStore keeps dedup records in Redis hashes so several processes share
// one suppression state. Records expire on their own after the TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. ttl bounds how long a record lives
// even if Cleanup never runs.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = defaultRetention
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// GetDedupRecord returns the record stored under key.
func (s *RedisStore) GetDedupRecord(ctx context.Context, key string) (domain.DedupRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return domain.DedupRecord{}, false, nil
	}
	if err != nil {
		return domain.DedupRecord{}, false, fmt.Errorf("reading %s: %w", key, err)
	}

	rec, err := decodeRecord(key, fields)
	if err != nil {
		return domain.DedupRecord{}, false, err
	}
	return rec, true, nil
}

// ClaimDedupRecord atomically stores rec unless a record at least as recent
// as notBefore exists.
func (s *RedisStore) ClaimDedupRecord(
	ctx context.Context,
	rec domain.DedupRecord,
	notBefore time.Time,
) (bool, error) {
	res, err := claimScript.Run(ctx, s.client,
		[]string{s.prefix + rec.Key},
		notBefore.UnixMilli(),
		string(rec.Metric),
		rec.Scope,
		rec.SentAt.UnixMilli(),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", rec.Key, err)
	}
	return res == 1, nil
}

// DeleteDedupRecordsBefore removes records sent before cutoff.
func (s *RedisStore) DeleteDedupRecordsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return s.deleteWhere(ctx, func(rec domain.DedupRecord) bool {
		return rec.SentAt.Before(cutoff)
	})
}

// DeleteDedupRecords removes records for scope, or all when scope is empty.
func (s *RedisStore) DeleteDedupRecords(ctx context.Context, scope string) (int, error) {
	return s.deleteWhere(ctx, func(rec domain.DedupRecord) bool {
		return scope == "" || rec.Scope == scope
	})
}

// ListDedupRecords returns every record under the prefix.
func (s *RedisStore) ListDedupRecords(ctx context.Context) ([]domain.DedupRecord, error) {
	var out []domain.DedupRecord

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), s.prefix)
		rec, ok, err := s.GetDedupRecord(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning dedup keys: %w", err)
	}
	return out, nil
}

func (s *RedisStore) deleteWhere(ctx context.Context, match func(domain.DedupRecord) bool) (int, error) {
	recs, err := s.ListDedupRecords(ctx)
	if err != nil {
		return 0, err
	}

	var keys []string
	for _, rec := range recs {
		if match(rec) {
			keys = append(keys, s.prefix+rec.Key)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("deleting dedup keys: %w", err)
	}
	return int(n), nil
}

func decodeRecord(key string, fields map[string]string) (domain.DedupRecord, error) {
	ms, err := strconv.ParseInt(fields["sent_at"], 10, 64)
	if err != nil {
		return domain.DedupRecord{}, fmt.Errorf("decoding sent_at for %s: %w", key, err)
	}
	return domain.DedupRecord{
		Key:    key,
		Metric: domain.Metric(fields["metric"]),
		Scope:  fields["scope"],
		SentAt: time.UnixMilli(ms).UTC(),
	}, nil
}
