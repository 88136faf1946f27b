package testutil

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/ai"
	"github.com/leaselens/leaselens/pkg/errors"
)

// FakeEmbedder wraps a deterministic embedding function and can be forced to
// fail. Embeddings are bag-of-words hashes, so related texts get related
// vectors.
type FakeEmbedder struct {
	mu    sync.Mutex
	dim   int
	Err   error
	Calls int
}

// NewFakeEmbedder creates a FakeEmbedder of the given dimensionality.
func NewFakeEmbedder(dim int) *FakeEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &FakeEmbedder{dim: dim}
}

func (f *FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.Calls++
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	vec := make([]float32, f.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		var h uint32 = 2166136261
		for i := 0; i < len(w); i++ {
			h = (h ^ uint32(w[i])) * 16777619
		}
		vec[h%uint32(f.dim)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec, nil
}

func (f *FakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *FakeEmbedder) Dimensions() int { return f.dim }

// FakeExemplarIndex is an in-memory lease.ExemplarIndex using cosine
// similarity.
type FakeExemplarIndex struct {
	mu        sync.Mutex
	exemplars []lease.Exemplar
	Err       error
}

func NewFakeExemplarIndex() *FakeExemplarIndex { return &FakeExemplarIndex{} }

func (f *FakeExemplarIndex) IndexExemplars(_ context.Context, exemplars []lease.Exemplar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, e := range exemplars {
		replaced := false
		for i := range f.exemplars {
			if f.exemplars[i].PatternID == e.PatternID {
				f.exemplars[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			f.exemplars = append(f.exemplars, e)
		}
	}
	return nil
}

func (f *FakeExemplarIndex) Nearest(_ context.Context, vector []float32, k int) ([]lease.ExemplarMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	matches := make([]lease.ExemplarMatch, 0, len(f.exemplars))
	for _, e := range f.exemplars {
		matches = append(matches, lease.ExemplarMatch{
			PatternID:     e.PatternID,
			ViolationType: e.ViolationType,
			Similarity:    Cosine(vector, e.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Cosine computes cosine similarity between two vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FakeAnalysisRepo is an in-memory lease.AnalysisRepository. TTLs are
// recorded but never enforced.
type FakeAnalysisRepo struct {
	mu      sync.Mutex
	results map[string]*lease.AnalysisResult
	TTLs    map[string]time.Duration
	SaveErr error
	GetErr  error
}

func NewFakeAnalysisRepo() *FakeAnalysisRepo {
	return &FakeAnalysisRepo{
		results: make(map[string]*lease.AnalysisResult),
		TTLs:    make(map[string]time.Duration),
	}
}

func (f *FakeAnalysisRepo) Save(_ context.Context, result *lease.AnalysisResult, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.results[result.LeaseID] = result
	f.TTLs[result.LeaseID] = ttl
	return nil
}

func (f *FakeAnalysisRepo) Get(_ context.Context, leaseID string) (*lease.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	r, ok := f.results[leaseID]
	if !ok {
		return nil, errors.NotFound("analysis for lease " + leaseID)
	}
	return r, nil
}

func (f *FakeAnalysisRepo) Delete(_ context.Context, leaseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.results, leaseID)
	delete(f.TTLs, leaseID)
	return nil
}

// FakeConversationRepo is an in-memory lease.ConversationRepository.
type FakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*lease.Conversation
	AppendErr     error
}

func NewFakeConversationRepo() *FakeConversationRepo {
	return &FakeConversationRepo{conversations: make(map[string]*lease.Conversation)}
}

func convKey(leaseID, userID string) string { return leaseID + "|" + userID }

func (f *FakeConversationRepo) Append(_ context.Context, leaseID, userID string, turns []lease.Turn, maxTurns int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return f.AppendErr
	}
	key := convKey(leaseID, userID)
	c, ok := f.conversations[key]
	if !ok {
		c = &lease.Conversation{LeaseID: leaseID, UserID: userID}
		f.conversations[key] = c
	}
	c.Turns = append(c.Turns, turns...)
	if maxTurns > 0 && len(c.Turns) > maxTurns {
		c.Turns = c.Turns[len(c.Turns)-maxTurns:]
	}
	return nil
}

func (f *FakeConversationRepo) Get(_ context.Context, leaseID, userID string) (*lease.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[convKey(leaseID, userID)]
	if !ok {
		return &lease.Conversation{LeaseID: leaseID, UserID: userID}, nil
	}
	cp := *c
	cp.Turns = append([]lease.Turn(nil), c.Turns...)
	return &cp, nil
}

// FakeClauseIndex is an in-memory lease.ClauseIndex. HybridSearch scores by
// word overlap with the query text plus cosine similarity when the query
// carries a vector.
type FakeClauseIndex struct {
	mu        sync.Mutex
	clauses   map[string]lease.Clause
	IndexErr  error
	SearchErr error
}

func NewFakeClauseIndex() *FakeClauseIndex {
	return &FakeClauseIndex{clauses: make(map[string]lease.Clause)}
}

func (f *FakeClauseIndex) IndexClauses(_ context.Context, clauses []lease.Clause, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.IndexErr != nil {
		return f.IndexErr
	}
	for _, c := range clauses {
		f.clauses[c.ID] = c
	}
	return nil
}

func (f *FakeClauseIndex) HybridSearch(_ context.Context, q lease.HybridQuery) ([]lease.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	queryWords := wordSet(q.Text)
	out := make([]lease.Candidate, 0)
	for _, c := range f.clauses {
		if q.LeaseID != "" && c.LeaseID != q.LeaseID {
			continue
		}
		if !matchesFilters(c, q.Filters) {
			continue
		}
		overlap := overlapRatio(queryWords, wordSet(c.Text))
		sim := 0.0
		if len(q.Vector) > 0 {
			sim = Cosine(q.Vector, c.Embedding)
		}
		score := overlap + sim
		if score <= 0 {
			continue
		}
		out = append(out, lease.Candidate{
			Clause:           c,
			Score:            score,
			VectorSimilarity: sim,
			Highlights:       highlightWords(c.Text, queryWords),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *FakeClauseIndex) DeleteByLease(_ context.Context, leaseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.clauses {
		if c.LeaseID == leaseID {
			delete(f.clauses, id)
		}
	}
	return nil
}

// Len reports how many clauses the index holds.
func (f *FakeClauseIndex) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clauses)
}

func matchesFilters(c lease.Clause, filters map[string]string) bool {
	for k, v := range filters {
		switch k {
		case "severity":
			if string(c.Severity) != v {
				return false
			}
		case "flagged":
			if (v == "true") != c.Flagged {
				return false
			}
		case "section":
			if c.Section != v {
				return false
			}
		case "violationType":
			if c.ViolationType != v {
				return false
			}
		}
	}
	return true
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,;:'\"()")] = struct{}{}
	}
	return set
}

func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 {
		return 0
	}
	var n int
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return float64(n) / float64(len(a))
}

func highlightWords(text string, queryWords map[string]struct{}) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		t := strings.Trim(w, ".,;:'\"()")
		if _, ok := queryWords[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FakeCompleter is a canned-response Completer that counts invocations.
type FakeCompleter struct {
	mu       sync.Mutex
	Response string
	Err      error
	Calls    int
	Prompts  [][]string
}

func NewFakeCompleter(response string) *FakeCompleter {
	return &FakeCompleter{Response: response}
}

func (f *FakeCompleter) Complete(_ context.Context, messages []ai.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	contents := make([]string, len(messages))
	for i, m := range messages {
		contents[i] = m.Content
	}
	f.Prompts = append(f.Prompts, contents)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// CallCount returns how many times Complete ran.
func (f *FakeCompleter) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}
