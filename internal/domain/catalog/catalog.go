// Package catalog implements the violation-pattern catalog: the fixed set of
// NYC housing-law rules that clause text is screened against. Patterns are
// plain data records validated once at startup; no dynamic rule loading or
// code execution is involved.
package catalog

import (
	"regexp"
	"sort"

	"github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// Pattern is one immutable catalog entry describing a known category of
// illegal lease clause.
type Pattern struct {
	// ID is unique across the catalog, format "<TIER>-<3digits>"
	// (e.g. "CRIT-001").
	ID string `json:"id"`

	// ViolationType is the human-readable category name.
	ViolationType string `json:"violation_type"`

	Severity ltypes.Severity `json:"severity"`

	// DetectionRegex is the source expression; it is compiled
	// case-insensitively during catalog construction.
	DetectionRegex string `json:"detection_regex"`

	LegalReference string `json:"legal_reference"`

	// ExampleClause is a representative illegal clause that DetectionRegex
	// matches. It doubles as the exemplar text indexed for the vector
	// fallback.
	ExampleClause string `json:"example_clause"`

	// Standard states what the law actually permits.
	Standard string `json:"standard"`

	Penalties      string `json:"penalties"`
	SourceCitation string `json:"source_citation"`

	// ExternalCode is the unique statute shorthand used by downstream
	// systems.
	ExternalCode string `json:"external_code"`

	re *regexp.Regexp
}

// Matches reports whether text triggers this pattern.
func (p *Pattern) Matches(text string) bool {
	return p.re != nil && p.re.MatchString(text)
}

// severityRank orders severities for the detection pass; lower ranks are
// evaluated first.
var severityRank = map[ltypes.Severity]int{
	ltypes.SeverityCritical: 0,
	ltypes.SeverityHigh:     1,
	ltypes.SeverityMedium:   2,
	ltypes.SeverityLow:      3,
}

var idPattern = regexp.MustCompile(`^[A-Z]{2,5}-\d{3}$`)

// Catalog is a validated, ordered set of patterns. Iteration order is
// Critical, High, Medium, Low; within a severity, original enumeration order
// is preserved.
type Catalog struct {
	patterns []Pattern
	byID     map[string]*Pattern
}

// New validates the given patterns and builds a Catalog. Validation fails on
// the first malformed ID, unknown severity, non-compiling regex, duplicate ID
// or duplicate external code; callers must treat any error as fatal.
func New(patterns []Pattern) (*Catalog, error) {
	c := &Catalog{
		patterns: make([]Pattern, len(patterns)),
		byID:     make(map[string]*Pattern, len(patterns)),
	}
	copy(c.patterns, patterns)

	seenCodes := make(map[string]string, len(patterns))
	for i := range c.patterns {
		p := &c.patterns[i]

		if !idPattern.MatchString(p.ID) {
			return nil, errors.Newf(errors.ErrCodeCatalogInvalid, "pattern %q: malformed id", p.ID)
		}
		if !p.Severity.Valid() {
			return nil, errors.Newf(errors.ErrCodeCatalogInvalid, "pattern %q: unknown severity %q", p.ID, p.Severity)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Newf(errors.ErrCodeCatalogInvalid, "pattern %q: duplicate id", p.ID)
		}
		if owner, dup := seenCodes[p.ExternalCode]; dup {
			return nil, errors.Newf(errors.ErrCodeCatalogInvalid,
				"pattern %q: external code %q already used by %q", p.ID, p.ExternalCode, owner)
		}

		re, err := regexp.Compile("(?i)" + p.DetectionRegex)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogInvalid, "pattern "+p.ID+": regex does not compile")
		}
		p.re = re

		c.byID[p.ID] = p
		seenCodes[p.ExternalCode] = p.ID
	}

	// Stable sort keeps the original enumeration within each severity.
	sort.SliceStable(c.patterns, func(i, j int) bool {
		return severityRank[c.patterns[i].Severity] < severityRank[c.patterns[j].Severity]
	})

	// Re-point the index after sorting moved the entries.
	for i := range c.patterns {
		c.byID[c.patterns[i].ID] = &c.patterns[i]
	}

	return c, nil
}

// MustDefault builds the built-in catalog and panics on validation failure.
// The built-in data is covered by tests, so a panic here means a broken build.
func MustDefault() *Catalog {
	c, err := New(builtinPatterns)
	if err != nil {
		panic(err)
	}
	return c
}

// MatchFirst returns the first pattern whose regex matches text, honoring
// catalog order, or nil when no pattern matches.
func (c *Catalog) MatchFirst(text string) *Pattern {
	for i := range c.patterns {
		if c.patterns[i].Matches(text) {
			return &c.patterns[i]
		}
	}
	return nil
}

// ByID returns the pattern with the given ID, or nil when absent.
func (c *Catalog) ByID(id string) *Pattern {
	return c.byID[id]
}

// Patterns returns the catalog entries in detection order. The returned slice
// must not be mutated.
func (c *Catalog) Patterns() []Pattern {
	return c.patterns
}

// Len returns the number of patterns in the catalog.
func (c *Catalog) Len() int {
	return len(c.patterns)
}
