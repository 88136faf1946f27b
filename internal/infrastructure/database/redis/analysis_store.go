package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/pkg/errors"
)

// AnalysisStore persists analysis results as JSON documents with a TTL. It
// implements lease.AnalysisRepository.
type AnalysisStore struct {
	client *Client
}

// NewAnalysisStore builds an AnalysisStore on the shared client.
func NewAnalysisStore(client *Client) *AnalysisStore {
	return &AnalysisStore{client: client}
}

func (s *AnalysisStore) analysisKey(leaseID string) string {
	return s.client.key("analysis", leaseID)
}

func (s *AnalysisStore) Save(ctx context.Context, result *lease.AnalysisResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal analysis")
	}
	if err := s.client.rdb.Set(ctx, s.analysisKey(result.LeaseID), raw, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreWrite, "save analysis")
	}
	return nil
}

func (s *AnalysisStore) Get(ctx context.Context, leaseID string) (*lease.AnalysisResult, error) {
	raw, err := s.client.rdb.Get(ctx, s.analysisKey(leaseID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFound("analysis for lease " + leaseID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreRead, "load analysis")
	}
	var result lease.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal analysis")
	}
	return &result, nil
}

func (s *AnalysisStore) Delete(ctx context.Context, leaseID string) error {
	if err := s.client.rdb.Del(ctx, s.analysisKey(leaseID)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreWrite, "delete analysis")
	}
	return nil
}
