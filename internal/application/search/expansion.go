package search

import (
	"strings"

	"github.com/leaselens/leaselens/internal/application/semcache"
)

// ExpansionOptions bounds query expansion.
type ExpansionOptions struct {
	MaxSynonymsPerWord int
	MaxFuzzyPerWord    int
	MaxVariants        int
}

// DefaultExpansionOptions mirrors the configuration defaults.
func DefaultExpansionOptions() ExpansionOptions {
	return ExpansionOptions{MaxSynonymsPerWord: 3, MaxFuzzyPerWord: 5, MaxVariants: 12}
}

// Expand produces the ordered variant list for a query: the normalized
// original first, then synonym substitutions, then typo-tolerant fuzzy
// variants. Output is deduplicated and deterministic for a given input.
func Expand(query, language string, opts ExpansionOptions) []string {
	normalized := semcache.NormalizeQuery(query)
	if normalized == "" {
		return nil
	}

	variants := []string{normalized}
	seen := map[string]struct{}{normalized: {}}
	add := func(v string) {
		if len(variants) >= opts.MaxVariants && opts.MaxVariants > 0 {
			return
		}
		if _, dup := seen[v]; dup || v == "" {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	words := strings.Fields(normalized)

	// one-word-at-a-time synonym substitution
	for i, w := range words {
		for _, syn := range synonymsFor(w, language, opts.MaxSynonymsPerWord) {
			add(substitute(words, i, syn))
		}
	}

	// typo-tolerant variants for longer words
	for i, w := range words {
		if len(w) <= 3 {
			continue
		}
		for _, fz := range fuzzyVariants(w, opts.MaxFuzzyPerWord) {
			add(substitute(words, i, fz))
		}
	}

	return variants
}

func substitute(words []string, index int, replacement string) string {
	out := make([]string, len(words))
	copy(out, words)
	out[index] = replacement
	return strings.Join(out, " ")
}

const vowels = "aeiou"

// fuzzyVariants generates adjacent-letter transpositions, single-letter
// deletions and single-vowel insertions, in that order, capped at max.
func fuzzyVariants(word string, max int) []string {
	if max <= 0 {
		return nil
	}
	var out []string
	seen := map[string]struct{}{word: {}}
	add := func(v string) bool {
		if _, dup := seen[v]; dup {
			return len(out) < max
		}
		seen[v] = struct{}{}
		out = append(out, v)
		return len(out) < max
	}

	// adjacent transpositions
	for i := 0; i+1 < len(word); i++ {
		v := word[:i] + string(word[i+1]) + string(word[i]) + word[i+2:]
		if !add(v) {
			return out
		}
	}
	// single deletions
	for i := 0; i < len(word); i++ {
		if !add(word[:i] + word[i+1:]) {
			return out
		}
	}
	// single vowel insertions at each position
	for i := 0; i <= len(word); i++ {
		for _, v := range vowels {
			if !add(word[:i] + string(v) + word[i:]) {
				return out
			}
		}
	}
	return out
}
