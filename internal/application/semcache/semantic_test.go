package semcache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/testutil"
	lerrors "github.com/leaselens/leaselens/pkg/errors"
)

// memStore is an in-memory Store with switchable failures.
type memStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	GetErr  error
	SetErr  error
}

func newMemStore() *memStore { return &memStore{entries: make(map[string]Entry)} }

func (s *memStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *memStore) Set(_ context.Context, entry Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.entries[entry.Key] = entry
	return nil
}

func (s *memStore) Sample(_ context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	out := make([]Entry, 0, n)
	for _, e := range s.entries {
		out = append(out, e)
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

func (s *memStore) DeletePrefix(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if pattern == "" || strings.Contains(e.QueryText, pattern) {
			delete(s.entries, k)
		}
	}
	return nil
}

func (s *memStore) DeleteByLease(_ context.Context, leaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if e.LeaseID == leaseID {
			delete(s.entries, k)
		}
	}
	return nil
}

func newTestCache(store Store, opts Options) *Cache {
	return New(store, opts, testutil.NewMockLogger(), prometheus.NewCollector())
}

func TestKey_Deterministic(t *testing.T) {
	a := Key(Request{Query: "What about my DEPOSIT?", LeaseID: "l1", Filters: map[string]string{"a": "1", "b": "2"}})
	b := Key(Request{Query: "what about my deposit", LeaseID: "l1", Filters: map[string]string{"b": "2", "a": "1"}})
	assert.Equal(t, a, b)

	c := Key(Request{Query: "what about my deposit", LeaseID: "l2"})
	assert.NotEqual(t, a, c)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "what about my deposit", NormalizeQuery("  What, about... my DEPOSIT?! "))
	assert.Equal(t, "", NormalizeQuery("?!.,"))
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("security deposit", "Security Deposit!"), 1e-9)
	assert.InDelta(t, 0.0, Jaccard("security deposit", "quiet enjoyment"), 1e-9)
	// {a,b,c} vs {b,c,d}: 2/4
	assert.InDelta(t, 0.5, Jaccard("alpha beta gamma", "beta gamma delta"), 1e-9)
}

func TestCache_PutGetRoundtrip(t *testing.T) {
	cache := newTestCache(newMemStore(), Options{})
	ctx := context.Background()
	req := Request{Query: "is my late fee legal", LeaseID: "lease-1"}

	_, ok := cache.Get(ctx, req)
	assert.False(t, ok)

	cache.Put(ctx, req, "answer text")
	got, ok := cache.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, "answer text", got)
}

func TestCache_L2PromotionToL1(t *testing.T) {
	store := newMemStore()
	warm := newTestCache(store, Options{})
	ctx := context.Background()
	req := Request{Query: "security deposit rules", LeaseID: "lease-1"}
	warm.Put(ctx, req, "cached answer")

	// fresh cache instance shares only the store
	cold := newTestCache(store, Options{})
	got, ok := cold.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, "cached answer", got)

	// now the entry is in L1: a broken store no longer matters
	store.GetErr = lerrors.New(lerrors.ErrCodeCacheError, "down")
	got, ok = cold.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, "cached answer", got)
}

func TestCache_SimilarityScan(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{SimilarityThreshold: 0.75})
	ctx := context.Background()

	cache.Put(ctx, Request{Query: "can landlord keep my security deposit", LeaseID: "l1"}, "deposit answer")

	// new cache instance, near-identical wording, different key
	cold := newTestCache(store, Options{SimilarityThreshold: 0.75})
	got, ok := cold.Get(ctx, Request{Query: "can the landlord keep my security deposit", LeaseID: "l1"})
	require.True(t, ok)
	assert.Equal(t, "deposit answer", got)
}

func TestCache_L2HitRecordsAccessMetadata(t *testing.T) {
	store := newMemStore()
	warm := newTestCache(store, Options{})
	ctx := context.Background()
	req := Request{Query: "security deposit rules", LeaseID: "lease-1"}
	warm.Put(ctx, req, "cached answer")

	cold := newTestCache(store, Options{})
	_, ok := cold.Get(ctx, req)
	require.True(t, ok)

	stored, err := store.Get(ctx, Key(req))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.AccessCount)
	assert.False(t, stored.AccessedAt.Before(stored.CreatedAt))
	assert.InDelta(t, 1.0, stored.Similarity, 1e-9)
}

func TestCache_SimilarityScanDoesNotCrossLeases(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{SimilarityThreshold: 0.75})
	ctx := context.Background()
	cache.Put(ctx, Request{Query: "can landlord keep my security deposit", LeaseID: "l1"}, "deposit answer")

	cold := newTestCache(store, Options{SimilarityThreshold: 0.75})
	_, ok := cold.Get(ctx, Request{Query: "can the landlord keep my security deposit", LeaseID: "l2"})
	assert.False(t, ok, "another lease's cached answer must not leak")
}

func TestCache_SimilarityScanRespectsContext(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{SimilarityThreshold: 0.75})
	ctx := context.Background()
	deposit := Request{
		Query:   "can landlord keep my security deposit",
		LeaseID: "l1",
		Context: []string{"security deposit equal to three months rent"},
	}
	cache.Put(ctx, deposit, "deposit answer")

	// same context, near-identical wording: served by the scan
	cold := newTestCache(store, Options{SimilarityThreshold: 0.75})
	got, ok := cold.Get(ctx, Request{
		Query:   "can the landlord keep my security deposit",
		LeaseID: "l1",
		Context: deposit.Context,
	})
	require.True(t, ok)
	assert.Equal(t, "deposit answer", got)

	// same wording under unrelated context must miss
	cold = newTestCache(store, Options{SimilarityThreshold: 0.75})
	_, ok = cold.Get(ctx, Request{
		Query:   "can the landlord keep my security deposit",
		LeaseID: "l1",
		Context: []string{"tenant waives jury trial"},
	})
	assert.False(t, ok, "context drift must not reuse the answer")
}

func TestCache_SimilarityBelowThresholdMisses(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{})
	ctx := context.Background()
	cache.Put(ctx, Request{Query: "can landlord keep my security deposit", LeaseID: "l1"}, "deposit answer")

	cold := newTestCache(store, Options{})
	_, ok := cold.Get(ctx, Request{Query: "when is rent due", LeaseID: "l1"})
	assert.False(t, ok)
}

func TestCache_LRUEviction(t *testing.T) {
	cache := newTestCache(nil, Options{L1Capacity: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cache.Put(ctx, Request{Query: fmt.Sprintf("query %d", i)}, fmt.Sprintf("answer %d", i))
	}
	// touch query 0 so query 1 becomes the eviction candidate
	_, ok := cache.Get(ctx, Request{Query: "query 0"})
	require.True(t, ok)

	cache.Put(ctx, Request{Query: "query 3"}, "answer 3")
	assert.Equal(t, 3, cache.Len())

	_, ok = cache.Get(ctx, Request{Query: "query 1"})
	assert.False(t, ok, "least recently used entry should be gone")
	_, ok = cache.Get(ctx, Request{Query: "query 0"})
	assert.True(t, ok)
}

func TestCache_L1TTLExpiry(t *testing.T) {
	cache := newTestCache(nil, Options{L1TTL: time.Minute})
	now := time.Now()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	cache.Put(ctx, Request{Query: "ephemeral"}, "answer")
	_, ok := cache.Get(ctx, Request{Query: "ephemeral"})
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(ctx, Request{Query: "ephemeral"})
	assert.False(t, ok)
}

func TestCache_StoreErrorsDegradeToMiss(t *testing.T) {
	store := newMemStore()
	store.GetErr = lerrors.New(lerrors.ErrCodeCacheError, "redis down")
	store.SetErr = lerrors.New(lerrors.ErrCodeCacheError, "redis down")
	cache := newTestCache(store, Options{})
	ctx := context.Background()

	// neither call panics or returns an error surface
	cache.Put(ctx, Request{Query: "resilient"}, "answer")
	got, ok := cache.Get(ctx, Request{Query: "resilient"})
	// L1 still serves the value even with a dead store
	require.True(t, ok)
	assert.Equal(t, "answer", got)
}

func TestCache_Invalidate(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{})
	ctx := context.Background()

	cache.Put(ctx, Request{Query: "deposit question one", LeaseID: "l1"}, "a1")
	cache.Put(ctx, Request{Query: "deposit question two", LeaseID: "l1"}, "a2")
	cache.Put(ctx, Request{Query: "pets allowed", LeaseID: "l1"}, "a3")

	cache.Invalidate(ctx, "deposit", "re-analysis of lease l1")

	_, ok := cache.Get(ctx, Request{Query: "deposit question one", LeaseID: "l1"})
	assert.False(t, ok)
	_, ok = cache.Get(ctx, Request{Query: "pets allowed", LeaseID: "l1"})
	assert.True(t, ok)
}

func TestCache_InvalidateLease(t *testing.T) {
	store := newMemStore()
	cache := newTestCache(store, Options{})
	ctx := context.Background()

	cache.Put(ctx, Request{Query: "deposit question", LeaseID: "l1"}, "a1")
	cache.Put(ctx, Request{Query: "deposit question", LeaseID: "l2"}, "a2")

	cache.InvalidateLease(ctx, "l1", "lease re-analyzed")

	_, ok := cache.Get(ctx, Request{Query: "deposit question", LeaseID: "l1"})
	assert.False(t, ok)
	got, ok := cache.Get(ctx, Request{Query: "deposit question", LeaseID: "l2"})
	require.True(t, ok)
	assert.Equal(t, "a2", got)
}
