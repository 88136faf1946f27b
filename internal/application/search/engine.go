package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// combined-score weights, fixed across deployments
const (
	weightVectorSimilarity = 0.4
	weightTextMatch        = 0.3
	weightContextRelevance = 0.2
	weightUserPreference   = 0.1
)

// Query is one enhanced-search request.
type Query struct {
	Query    string            `json:"query"`
	LeaseID  string            `json:"leaseId"`
	Context  []string          `json:"context,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	UserID   string            `json:"userId,omitempty"`
	Language string            `json:"language,omitempty"`
}

// Result is one scored, highlighted search hit.
type Result struct {
	ID               string          `json:"id"`
	LeaseID          string          `json:"leaseId"`
	Text             string          `json:"text"`
	Section          string          `json:"section,omitempty"`
	Severity         ltypes.Severity `json:"severity,omitempty"`
	ViolationType    string          `json:"violationType,omitempty"`
	LegalReference   string          `json:"legalReference,omitempty"`
	Score            float64         `json:"score"`
	VectorSimilarity float64         `json:"vectorSimilarity"`
	Highlights       []string        `json:"highlights,omitempty"`
}

// Preferences is optional per-user search-ranking data.
type Preferences struct {
	Severities   []ltypes.Severity
	ContentTypes []string
}

// PreferenceProvider resolves stored preferences for a user; a nil result
// means no data and neutral ranking.
type PreferenceProvider interface {
	Preferences(ctx context.Context, userID string) (*Preferences, error)
}

// Embedder is the narrow embedding surface the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options tunes the engine.
type Options struct {
	Expansion          ExpansionOptions
	CandidatesPerQuery int
	MaxResults         int
}

// Engine runs cache-fronted hybrid search with multi-strategy query
// expansion. Per-variant store failures drop that variant's results; the
// engine itself only errors on invalid input.
type Engine struct {
	index    lease.ClauseIndex
	embedder Embedder
	cache    *semcache.Cache
	prefs    PreferenceProvider
	opts     Options
	logger   logging.Logger
	metrics  *prometheus.Collector
}

// NewEngine wires an Engine. cache and prefs may be nil.
func NewEngine(
	index lease.ClauseIndex,
	embedder Embedder,
	cache *semcache.Cache,
	prefs PreferenceProvider,
	opts Options,
	logger logging.Logger,
	metrics *prometheus.Collector,
) *Engine {
	if opts.CandidatesPerQuery <= 0 {
		opts.CandidatesPerQuery = 10
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.Expansion.MaxVariants <= 0 {
		opts.Expansion = DefaultExpansionOptions()
	}
	return &Engine{
		index:    index,
		embedder: embedder,
		cache:    cache,
		prefs:    prefs,
		opts:     opts,
		logger:   logger.Named("search"),
		metrics:  metrics,
	}
}

// Search executes one query and returns results ordered by descending
// combined score.
func (e *Engine) Search(ctx context.Context, q Query) ([]Result, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "query is empty")
	}
	start := time.Now()
	defer func() { e.metrics.SearchDuration.Observe(time.Since(start).Seconds()) }()

	cacheReq := e.cacheRequest(q)
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, cacheReq); ok {
			var results []Result
			if err := json.Unmarshal([]byte(raw), &results); err == nil {
				e.metrics.SearchRequests.WithLabelValues("cached").Inc()
				return results, nil
			}
			e.logger.Warn("cached search payload is corrupt, recomputing")
		}
	}

	variants := Expand(q.Query, q.Language, e.opts.Expansion)
	e.metrics.SearchVariants.Observe(float64(len(variants)))

	merged := e.gather(ctx, q, variants)
	if len(merged) == 0 {
		e.metrics.SearchRequests.WithLabelValues("empty").Inc()
		return []Result{}, nil
	}

	results := e.score(ctx, q, merged)
	if len(results) > e.opts.MaxResults {
		results = results[:e.opts.MaxResults]
	}

	if e.cache != nil {
		if raw, err := json.Marshal(results); err == nil {
			e.cache.Put(ctx, cacheReq, string(raw))
		}
	}
	e.metrics.SearchRequests.WithLabelValues("computed").Inc()
	return results, nil
}

func (e *Engine) cacheRequest(q Query) semcache.Request {
	return semcache.Request{
		Query:   q.Query,
		LeaseID: q.LeaseID,
		Context: q.Context,
		Filters: q.Filters,
		UserID:  q.UserID,
	}
}

// gather fans the variant queries out against the store and merges the
// candidates, keeping the maximum score and vector similarity per clause id.
// Max dominates so a near-exact match found under one paraphrase is never
// penalized by weaker matches under others.
func (e *Engine) gather(ctx context.Context, q Query, variants []string) map[string]lease.Candidate {
	var mu sync.Mutex
	merged := make(map[string]lease.Candidate)

	g, gctx := errgroup.WithContext(ctx)
	for _, variant := range variants {
		variant := variant
		g.Go(func() error {
			candidates, err := e.searchVariant(gctx, q, variant)
			if err != nil {
				// drop this variant, keep the rest
				e.logger.Warn("variant query failed",
					logging.String("variant", variant),
					logging.Err(err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, c := range candidates {
				prev, ok := merged[c.Clause.ID]
				if !ok {
					merged[c.Clause.ID] = c
					continue
				}
				if c.Score > prev.Score {
					prev.Score = c.Score
				}
				if c.VectorSimilarity > prev.VectorSimilarity {
					prev.VectorSimilarity = c.VectorSimilarity
				}
				merged[c.Clause.ID] = prev
			}
			return nil
		})
	}
	_ = g.Wait()
	return merged
}

func (e *Engine) searchVariant(ctx context.Context, q Query, variant string) ([]lease.Candidate, error) {
	var vector []float32
	if e.embedder != nil {
		v, err := e.embedder.Embed(ctx, variant)
		if err != nil {
			// degrade to lexical-only for this variant
			e.logger.Warn("variant embedding failed", logging.Err(err))
		} else {
			vector = v
		}
	}
	return e.index.HybridSearch(ctx, lease.HybridQuery{
		Text:    variant,
		Vector:  vector,
		LeaseID: q.LeaseID,
		Filters: q.Filters,
		Limit:   e.opts.CandidatesPerQuery,
	})
}

// score applies the four-part relevance model and orders results.
func (e *Engine) score(ctx context.Context, q Query, merged map[string]lease.Candidate) []Result {
	prefs := e.loadPreferences(ctx, q.UserID)
	normalizedQuery := semcache.NormalizeQuery(q.Query)

	results := make([]Result, 0, len(merged))
	for _, c := range merged {
		textMatch := semcache.Jaccard(normalizedQuery, c.Clause.Text)
		contextRelevance := contextRelevance(c.Clause.Text, q.Context)
		userPreference := preferenceScore(c.Clause, prefs)

		combined := weightVectorSimilarity*c.VectorSimilarity +
			weightTextMatch*textMatch +
			weightContextRelevance*contextRelevance +
			weightUserPreference*userPreference

		results = append(results, Result{
			ID:               c.Clause.ID,
			LeaseID:          c.Clause.LeaseID,
			Text:             c.Clause.Text,
			Section:          c.Clause.Section,
			Severity:         c.Clause.Severity,
			ViolationType:    c.Clause.ViolationType,
			LegalReference:   c.Clause.LegalReference,
			Score:            combined,
			VectorSimilarity: c.VectorSimilarity,
			Highlights:       Highlight(c.Clause.Text, normalizedQuery),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

func (e *Engine) loadPreferences(ctx context.Context, userID string) *Preferences {
	if e.prefs == nil || userID == "" {
		return nil
	}
	p, err := e.prefs.Preferences(ctx, userID)
	if err != nil {
		e.logger.Warn("preference lookup failed", logging.Err(err))
		return nil
	}
	return p
}

// contextRelevance measures overlap between candidate text and the clauses
// passed as conversational context. Each overlapping clause contributes its
// word-overlap share of 0.5; the sum is capped at 1.0.
func contextRelevance(candidateText string, contextClauses []string) float64 {
	var total float64
	for _, clause := range contextClauses {
		total += 0.5 * semcache.Jaccard(candidateText, clause)
	}
	if total > 1 {
		return 1
	}
	return total
}

// preferenceScore starts neutral and applies multiplicative boosts when the
// candidate matches stored user preferences.
func preferenceScore(c lease.Clause, prefs *Preferences) float64 {
	score := 0.5
	if prefs == nil {
		return score
	}
	for _, s := range prefs.Severities {
		if c.Severity == s {
			score *= 1.2
			break
		}
	}
	for _, t := range prefs.ContentTypes {
		if c.ViolationType == t {
			score *= 1.1
			break
		}
	}
	return score
}

// Highlight extracts the original-case occurrences of each normalized query
// word from text, deduplicated, in text order. Matching folds case on
// rune-aligned windows; lowering the whole text first would shift byte
// offsets wherever folding changes a rune's encoded length.
func Highlight(text, normalizedQuery string) []string {
	queryWords := strings.Fields(normalizedQuery)
	if len(queryWords) == 0 {
		return nil
	}

	// rune start offsets, with the total length as sentinel
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	type span struct {
		start int
		value string
	}
	var spans []span
	seen := make(map[string]struct{})
	for _, w := range queryWords {
		n := utf8.RuneCountInString(w)
		if n == 0 {
			continue
		}
		for i := 0; i+n < len(offsets); {
			window := text[offsets[i]:offsets[i+n]]
			if !strings.EqualFold(window, w) {
				i++
				continue
			}
			if _, dup := seen[window]; !dup {
				seen[window] = struct{}{}
				spans = append(spans, span{start: offsets[i], value: window})
			}
			i += n
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.value
	}
	return out
}
