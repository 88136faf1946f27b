package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_NormalizedOriginalFirst(t *testing.T) {
	variants := Expand("  Can my LANDLORD keep the deposit?! ", "en", DefaultExpansionOptions())
	require.NotEmpty(t, variants)
	assert.Equal(t, "can my landlord keep the deposit", variants[0])
}

func TestExpand_Deterministic(t *testing.T) {
	a := Expand("landlord entry without notice", "en", DefaultExpansionOptions())
	b := Expand("landlord entry without notice", "en", DefaultExpansionOptions())
	assert.Equal(t, a, b)
}

func TestExpand_SynonymSubstitution(t *testing.T) {
	variants := Expand("landlord deposit", "en", ExpansionOptions{MaxSynonymsPerWord: 3, MaxFuzzyPerWord: 0, MaxVariants: 20})

	assert.Contains(t, variants, "lessor deposit")
	assert.Contains(t, variants, "owner deposit")
	assert.Contains(t, variants, "landlord security")
	// one word substituted at a time, never both
	for _, v := range variants {
		words := strings.Fields(v)
		changed := 0
		if words[0] != "landlord" {
			changed++
		}
		if words[1] != "deposit" {
			changed++
		}
		assert.LessOrEqual(t, changed, 1, "variant %q changed more than one word", v)
	}
}

func TestExpand_SynonymCapPerWord(t *testing.T) {
	// "lease" has 4 synonyms in the table; only 2 may be used
	variants := Expand("lease", "en", ExpansionOptions{MaxSynonymsPerWord: 2, MaxFuzzyPerWord: 0, MaxVariants: 20})
	assert.Equal(t, []string{"lease", "rental", "agreement"}, variants)
}

func TestExpand_SpanishSynonyms(t *testing.T) {
	variants := Expand("deposito ilegal", "es", ExpansionOptions{MaxSynonymsPerWord: 3, MaxFuzzyPerWord: 0, MaxVariants: 20})
	assert.Contains(t, variants, "fianza ilegal")
	assert.Contains(t, variants, "deposito prohibido")
}

func TestExpand_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	variants := Expand("landlord", "xx", ExpansionOptions{MaxSynonymsPerWord: 1, MaxFuzzyPerWord: 0, MaxVariants: 20})
	assert.Contains(t, variants, "lessor")
}

func TestExpand_ShortWordsSkipFuzzy(t *testing.T) {
	variants := Expand("fee due", "en", ExpansionOptions{MaxSynonymsPerWord: 0, MaxFuzzyPerWord: 5, MaxVariants: 50})
	// both words are ≤3 characters, so only the original survives
	assert.Equal(t, []string{"fee due"}, variants)
}

func TestExpand_MaxVariantsCap(t *testing.T) {
	variants := Expand("landlord tenant deposit repair eviction", "en", ExpansionOptions{
		MaxSynonymsPerWord: 3, MaxFuzzyPerWord: 5, MaxVariants: 8,
	})
	assert.Len(t, variants, 8)
	assert.Equal(t, "landlord tenant deposit repair eviction", variants[0])
}

func TestExpand_EmptyQuery(t *testing.T) {
	assert.Nil(t, Expand("   ?! ", "en", DefaultExpansionOptions()))
}

func TestFuzzyVariants(t *testing.T) {
	got := fuzzyVariants("rent", 5)
	require.Len(t, got, 5)
	// adjacent transpositions come first
	assert.Equal(t, "ernt", got[0])
	assert.Equal(t, "rnet", got[1])
	assert.Equal(t, "retn", got[2])
	// then single deletions
	assert.Equal(t, "ent", got[3])
	assert.Equal(t, "rnt", got[4])
}

func TestFuzzyVariants_IncludesVowelInsertion(t *testing.T) {
	got := fuzzyVariants("mold", 40)
	assert.Contains(t, got, "amold")
	assert.Contains(t, got, "molda")
}
