package semcache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
)

// Entry is one persisted cache record. QueryText keeps the normalized query
// so the similarity scan can compare entries without re-deriving them from
// the key hash.
type Entry struct {
	Key         string        `json:"key"`
	LeaseID     string        `json:"leaseId,omitempty"`
	QueryText   string        `json:"queryText"`
	Context     []string      `json:"context,omitempty"`
	Response    string        `json:"response"`
	CreatedAt   time.Time     `json:"createdAt"`
	AccessedAt  time.Time     `json:"accessedAt"`
	AccessCount int           `json:"accessCount"`
	TTL         time.Duration `json:"ttl"`
	// Similarity is 1 for exact-key hits and the word-overlap score of the
	// last near-miss scan that served the entry otherwise.
	Similarity float64 `json:"similarity,omitempty"`
}

// Store is the persistent L2 tier. Implementations must treat Set as an
// idempotent upsert and may expire entries server-side.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, entry Entry, ttl time.Duration) error
	// Sample returns up to n arbitrary live entries for the similarity scan.
	Sample(ctx context.Context, n int) ([]Entry, error)
	// DeletePrefix removes entries whose normalized query contains pattern.
	DeletePrefix(ctx context.Context, pattern string) error
	// DeleteByLease removes every entry scoped to the given lease.
	DeleteByLease(ctx context.Context, leaseID string) error
}

// Options tunes a Cache.
type Options struct {
	L1Capacity          int
	L1TTL               time.Duration
	L2TTL               time.Duration
	SimilarityThreshold float64
	SimilaritySample    int
}

type l1Entry struct {
	key       string
	leaseID   string
	queryText string
	response  string
	expiresAt time.Time
	element   *list.Element
}

// Cache is the two-tier semantic response cache. L1 is an in-process LRU
// bounded by capacity and a short TTL; L2 is a persistent store with a
// longer TTL. A full miss falls back to a bounded word-overlap similarity
// scan over sampled L2 entries. Store errors degrade to a miss; Get never
// returns an error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*l1Entry
	lru     *list.List

	store   Store
	opts    Options
	logger  logging.Logger
	metrics *prometheus.Collector
	now     func() time.Time
}

// New builds a Cache. store may be nil, leaving only the in-process tier.
func New(store Store, opts Options, logger logging.Logger, metrics *prometheus.Collector) *Cache {
	if opts.L1Capacity <= 0 {
		opts.L1Capacity = 1000
	}
	if opts.L1TTL <= 0 {
		opts.L1TTL = 5 * time.Minute
	}
	if opts.L2TTL <= 0 {
		opts.L2TTL = 24 * time.Hour
	}
	if opts.SimilarityThreshold <= 0 || opts.SimilarityThreshold > 1 {
		opts.SimilarityThreshold = 0.85
	}
	if opts.SimilaritySample <= 0 {
		opts.SimilaritySample = 50
	}
	return &Cache{
		entries: make(map[string]*l1Entry),
		lru:     list.New(),
		store:   store,
		opts:    opts,
		logger:  logger.Named("semcache"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Get returns the cached response for req, or "" and false on a miss.
func (c *Cache) Get(ctx context.Context, req Request) (string, bool) {
	key := Key(req)

	if response, ok := c.getL1(key); ok {
		c.metrics.CacheRequests.WithLabelValues("l1", "hit").Inc()
		return response, true
	}
	c.metrics.CacheRequests.WithLabelValues("l1", "miss").Inc()

	if c.store == nil {
		return "", false
	}

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("l2 lookup failed", logging.Err(err))
		c.metrics.CacheRequests.WithLabelValues("l2", "error").Inc()
		return "", false
	}
	if entry != nil {
		c.metrics.CacheRequests.WithLabelValues("l2", "hit").Inc()
		c.putL1(entry.Key, entry.LeaseID, entry.QueryText, entry.Response)
		c.touch(ctx, entry, 1)
		return entry.Response, true
	}
	c.metrics.CacheRequests.WithLabelValues("l2", "miss").Inc()

	return c.similarityScan(ctx, req)
}

// similarityScan is the last-resort lookup: compare the query against a
// bounded sample of persisted entries by word overlap. An entry scores the
// lesser of its query overlap and its context overlap, so an answer computed
// under different conversational context cannot clear the threshold on query
// wording alone.
func (c *Cache) similarityScan(ctx context.Context, req Request) (string, bool) {
	sample, err := c.store.Sample(ctx, c.opts.SimilaritySample)
	if err != nil {
		c.logger.Warn("similarity sample failed", logging.Err(err))
		c.metrics.CacheRequests.WithLabelValues("similarity", "error").Inc()
		return "", false
	}

	query := NormalizeQuery(req.Query)
	reqContext := strings.Join(req.Context, " ")
	best := Entry{}
	bestScore := 0.0
	for _, e := range sample {
		if e.LeaseID != req.LeaseID {
			continue
		}
		score := Jaccard(query, e.QueryText)
		if ctxScore := Jaccard(reqContext, strings.Join(e.Context, " ")); ctxScore < score {
			score = ctxScore
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	if bestScore >= c.opts.SimilarityThreshold {
		c.metrics.CacheRequests.WithLabelValues("similarity", "hit").Inc()
		c.logger.Debug("similarity hit",
			logging.Float64("score", bestScore),
			logging.String("matched_query", best.QueryText))
		c.touch(ctx, &best, bestScore)
		return best.Response, true
	}
	c.metrics.CacheRequests.WithLabelValues("similarity", "miss").Inc()
	return "", false
}

// Put stores the response in both tiers. L2 write failures are logged and
// otherwise ignored.
func (c *Cache) Put(ctx context.Context, req Request, response string) {
	key := Key(req)
	queryText := NormalizeQuery(req.Query)

	c.putL1(key, req.LeaseID, queryText, response)

	if c.store == nil {
		return
	}
	now := c.now().UTC()
	entry := Entry{
		Key:        key,
		LeaseID:    req.LeaseID,
		QueryText:  queryText,
		Context:    req.Context,
		Response:   response,
		CreatedAt:  now,
		AccessedAt: now,
		TTL:        c.opts.L2TTL,
		Similarity: 1,
	}
	if err := c.store.Set(ctx, entry, c.opts.L2TTL); err != nil {
		c.logger.Warn("l2 write failed", logging.Err(err))
	}
}

// touch records access metadata on a persisted entry. The rewrite shrinks
// the TTL to what remains so a read never extends the entry's lifetime.
func (c *Cache) touch(ctx context.Context, entry *Entry, similarity float64) {
	now := c.now().UTC()
	entry.AccessCount++
	entry.AccessedAt = now
	entry.Similarity = similarity
	ttl := entry.TTL
	if ttl <= 0 {
		ttl = c.opts.L2TTL
	}
	remaining := ttl - now.Sub(entry.CreatedAt)
	if remaining <= 0 {
		return
	}
	if err := c.store.Set(ctx, *entry, remaining); err != nil {
		c.logger.Debug("access metadata write failed", logging.Err(err))
	}
}

// Invalidate drops every entry whose normalized query contains pattern.
// reason is recorded for observability only.
func (c *Cache) Invalidate(ctx context.Context, pattern, reason string) {
	pattern = NormalizeQuery(pattern)

	c.mu.Lock()
	for key, e := range c.entries {
		if pattern == "" || strings.Contains(e.queryText, pattern) {
			c.lru.Remove(e.element)
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.DeletePrefix(ctx, pattern); err != nil {
			c.logger.Warn("l2 invalidation failed", logging.Err(err))
		}
	}
	c.logger.Info("cache invalidated",
		logging.String("pattern", pattern),
		logging.String("reason", reason))
}

// InvalidateLease drops every entry scoped to leaseID from both tiers.
// Called after a lease is re-analyzed so stale answers cannot survive.
func (c *Cache) InvalidateLease(ctx context.Context, leaseID, reason string) {
	if leaseID == "" {
		return
	}

	c.mu.Lock()
	for key, e := range c.entries {
		if e.leaseID == leaseID {
			c.lru.Remove(e.element)
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.DeleteByLease(ctx, leaseID); err != nil {
			c.logger.Warn("l2 lease invalidation failed", logging.Err(err))
		}
	}
	c.logger.Info("cache invalidated",
		logging.String("lease_id", leaseID),
		logging.String("reason", reason))
}

// Len reports the number of live L1 entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) getL1(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(e.element)
		delete(c.entries, key)
		return "", false
	}
	c.lru.MoveToFront(e.element)
	return e.response, true
}

func (c *Cache) putL1(key, leaseID, queryText, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.response = response
		e.leaseID = leaseID
		e.queryText = queryText
		e.expiresAt = c.now().Add(c.opts.L1TTL)
		c.lru.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.opts.L1Capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*l1Entry)
		c.lru.Remove(oldest)
		delete(c.entries, evicted.key)
	}

	e := &l1Entry{
		key:       key,
		leaseID:   leaseID,
		queryText: queryText,
		response:  response,
		expiresAt: c.now().Add(c.opts.L1TTL),
	}
	e.element = c.lru.PushFront(e)
	c.entries[key] = e
}
