package lease

import (
	"context"
	"time"

	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// AnalysisRepository persists completed analyses. Records expire after the
// TTL given at save time; a Get after expiry reports not-found.
type AnalysisRepository interface {
	Save(ctx context.Context, result *AnalysisResult, ttl time.Duration) error
	Get(ctx context.Context, leaseID string) (*AnalysisResult, error)
	Delete(ctx context.Context, leaseID string) error
}

// ConversationRepository holds bounded per-lease, per-user Q&A history.
type ConversationRepository interface {
	// Append adds turns and trims the history to maxTurns, refreshing the TTL.
	Append(ctx context.Context, leaseID, userID string, turns []Turn, maxTurns int, ttl time.Duration) error
	Get(ctx context.Context, leaseID, userID string) (*Conversation, error)
}

// HybridQuery is one lexical+vector query against the clause index.
type HybridQuery struct {
	Text    string
	Vector  []float32
	LeaseID string
	// Filters restricts candidates by exact field values, e.g.
	// {"severity": "Critical", "flagged": "true"}.
	Filters map[string]string
	Limit   int
}

// Candidate is one clause returned by a hybrid query, before the search
// engine re-scores it.
type Candidate struct {
	Clause           Clause
	Score            float64
	VectorSimilarity float64
	Highlights       []string
}

// ClauseIndex is the vector/text store for analyzed clauses. Writes are
// idempotent upserts keyed by Clause.ID.
type ClauseIndex interface {
	IndexClauses(ctx context.Context, clauses []Clause, ttl time.Duration) error
	HybridSearch(ctx context.Context, q HybridQuery) ([]Candidate, error)
	DeleteByLease(ctx context.Context, leaseID string) error
}

// Exemplar is one embedded example of a known violation, used by the
// detector's vector fallback.
type Exemplar struct {
	PatternID     string
	ViolationType string
	Severity      ltypes.Severity
	Text          string
	Embedding     []float32
}

// ExemplarMatch is one nearest-neighbor hit against the exemplar index.
type ExemplarMatch struct {
	PatternID     string
	ViolationType string
	Similarity    float64
}

// ExemplarIndex stores violation exemplars for nearest-neighbor lookup.
// Upserts are keyed by PatternID.
type ExemplarIndex interface {
	IndexExemplars(ctx context.Context, exemplars []Exemplar) error
	Nearest(ctx context.Context, vector []float32, k int) ([]ExemplarMatch, error)
}
