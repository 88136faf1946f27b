package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// scanBatch is the COUNT hint for SCAN while sampling cache entries.
const scanBatch = 100

// CacheStore is the persistent L2 tier of the semantic cache. It implements
// semcache.Store.
type CacheStore struct {
	client *Client
}

// NewCacheStore builds a CacheStore on the shared client.
func NewCacheStore(client *Client) *CacheStore {
	return &CacheStore{client: client}
}

func (s *CacheStore) cacheKey(key string) string {
	return s.client.key("semcache", key)
}

func (s *CacheStore) Get(ctx context.Context, key string) (*semcache.Entry, error) {
	raw, err := s.client.rdb.Get(ctx, s.cacheKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "cache read")
	}
	var entry semcache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal cache entry")
	}
	return &entry, nil
}

func (s *CacheStore) Set(ctx context.Context, entry semcache.Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal cache entry")
	}
	if err := s.client.rdb.Set(ctx, s.cacheKey(entry.Key), raw, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write")
	}
	return nil
}

// Sample walks the keyspace with SCAN and returns up to n live entries.
// Expired keys disappear server-side, so everything fetched is valid.
func (s *CacheStore) Sample(ctx context.Context, n int) ([]semcache.Entry, error) {
	pattern := s.cacheKey("*")
	out := make([]semcache.Entry, 0, n)

	var cursor uint64
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCacheError, "cache scan")
		}
		for _, key := range keys {
			raw, err := s.client.rdb.Get(ctx, key).Bytes()
			if err != nil {
				// key may have expired between SCAN and GET
				continue
			}
			var entry semcache.Entry
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			out = append(out, entry)
			if len(out) >= n {
				return out, nil
			}
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

// DeletePrefix removes all entries whose stored query text contains pattern.
// An empty pattern clears the whole cache keyspace.
func (s *CacheStore) DeletePrefix(ctx context.Context, pattern string) error {
	match := s.cacheKey("*")
	var cursor uint64
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "cache scan")
		}
		for _, key := range keys {
			if pattern != "" {
				raw, err := s.client.rdb.Get(ctx, key).Bytes()
				if err != nil {
					continue
				}
				var entry semcache.Entry
				if err := json.Unmarshal(raw, &entry); err == nil &&
					!strings.Contains(entry.QueryText, pattern) {
					continue
				}
			}
			if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
				s.client.logger.Warn("cache delete failed", logging.Err(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// DeleteByLease removes all cache entries scoped to the given lease. Used
// after a lease is re-analyzed.
func (s *CacheStore) DeleteByLease(ctx context.Context, leaseID string) error {
	if leaseID == "" {
		return nil
	}
	match := s.cacheKey("*")
	var cursor uint64
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "cache scan")
		}
		for _, key := range keys {
			raw, err := s.client.rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var entry semcache.Entry
			if err := json.Unmarshal(raw, &entry); err != nil || entry.LeaseID != leaseID {
				continue
			}
			if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
				s.client.logger.Warn("cache delete failed", logging.Err(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
