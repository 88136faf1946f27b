package semcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
)

// Request identifies one cacheable computation. Two requests with the same
// canonical form share a cache entry.
type Request struct {
	Query   string
	LeaseID string
	Context []string
	Filters map[string]string
	UserID  string
}

// canonicalRequest is the serialization shape hashed into the key. Filter
// keys are flattened into a sorted slice so map iteration order cannot leak
// into the hash.
type canonicalRequest struct {
	Query   string   `json:"query"`
	LeaseID string   `json:"leaseId"`
	Context []string `json:"context,omitempty"`
	Filters []string `json:"filters,omitempty"`
	UserID  string   `json:"userId,omitempty"`
}

// Key derives the deterministic cache key for a request: SHA-256 over the
// canonical JSON form with the query normalized first.
func Key(req Request) string {
	canon := canonicalRequest{
		Query:   NormalizeQuery(req.Query),
		LeaseID: req.LeaseID,
		Context: req.Context,
		UserID:  req.UserID,
	}
	if len(req.Filters) > 0 {
		canon.Filters = make([]string, 0, len(req.Filters))
		for k, v := range req.Filters {
			canon.Filters = append(canon.Filters, k+"="+v)
		}
		sort.Strings(canon.Filters)
	}
	raw, _ := json.Marshal(canon)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// NormalizeQuery lowercases, strips punctuation and collapses whitespace.
func NormalizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range strings.ToLower(q) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Jaccard is word-overlap similarity between two texts: |A∩B| / |A∪B| over
// their normalized word sets.
func Jaccard(a, b string) float64 {
	as := words(NormalizeQuery(a))
	bs := words(NormalizeQuery(b))
	if len(as) == 0 && len(bs) == 0 {
		return 1
	}
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	inter := 0
	for w := range as {
		if _, ok := bs[w]; ok {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

func words(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
