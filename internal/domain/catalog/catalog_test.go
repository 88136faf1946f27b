package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

func TestMustDefault(t *testing.T) {
	c := MustDefault()
	require.NotNil(t, c)
	assert.Equal(t, len(builtinPatterns), c.Len())
}

func TestBuiltinPatternsSelfConsistent(t *testing.T) {
	// every pattern's example clause must trigger its own regex
	c := MustDefault()
	for _, p := range c.Patterns() {
		assert.True(t, p.Matches(p.ExampleClause), "pattern %s does not match its own example: %q", p.ID, p.ExampleClause)
	}
}

func TestMatchFirstExcessiveDeposit(t *testing.T) {
	c := MustDefault()

	p := c.MatchFirst("The Tenant shall provide a security deposit equal to three months' rent, payable upon signing.")
	require.NotNil(t, p)
	assert.Equal(t, "CRIT-001", p.ID)
	assert.Equal(t, ltypes.SeverityCritical, p.Severity)
	assert.Contains(t, p.LegalReference, "NYC Housing Maintenance Code")
}

func TestMatchFirstCaseInsensitive(t *testing.T) {
	c := MustDefault()

	p := c.MatchFirst("SECURITY DEPOSIT EQUAL TO THREE MONTHS' RENT.")
	require.NotNil(t, p)
	assert.Equal(t, "CRIT-001", p.ID)
}

func TestMatchFirstCompliantClauses(t *testing.T) {
	c := MustDefault()

	compliant := []string{
		"Tenant shall provide a security deposit equal to one month's rent, held in an interest-bearing account.",
		"Landlord shall give Tenant at least 24 hours' written notice before entering, except in emergencies.",
		"Rent is due on the first of each month and remains fixed for the lease term.",
		"Landlord shall maintain the premises in good repair in accordance with applicable law.",
		"Tenant may sublet the premises with Landlord's consent, which shall not be unreasonably withheld.",
	}
	for _, clause := range compliant {
		assert.Nil(t, c.MatchFirst(clause), "compliant clause wrongly flagged: %q", clause)
	}
}

func TestCatalogOrderedBySeverity(t *testing.T) {
	c := MustDefault()

	prev := 0
	for _, p := range c.Patterns() {
		rank := severityRank[p.Severity]
		assert.GreaterOrEqual(t, rank, prev, "pattern %s out of severity order", p.ID)
		prev = rank
	}
	// the most severe tier comes first
	assert.Equal(t, ltypes.SeverityCritical, c.Patterns()[0].Severity)
}

func TestByID(t *testing.T) {
	c := MustDefault()

	p := c.ByID("HIGH-001")
	require.NotNil(t, p)
	assert.Equal(t, "Excessive Late Fee", p.ViolationType)

	assert.Nil(t, c.ByID("NOPE-999"))
}

func TestNewRejectsDuplicateID(t *testing.T) {
	_, err := New([]Pattern{
		{ID: "CRIT-001", ViolationType: "A", Severity: ltypes.SeverityCritical, DetectionRegex: `a`, ExampleClause: "a", ExternalCode: "X-1"},
		{ID: "CRIT-001", ViolationType: "B", Severity: ltypes.SeverityCritical, DetectionRegex: `b`, ExampleClause: "b", ExternalCode: "X-2"},
	})
	require.Error(t, err)
}

func TestNewRejectsBadRegex(t *testing.T) {
	_, err := New([]Pattern{
		{ID: "CRIT-001", ViolationType: "A", Severity: ltypes.SeverityCritical, DetectionRegex: `(`, ExampleClause: "a", ExternalCode: "X-1"},
	})
	require.Error(t, err)
}

func TestNewRejectsMalformedID(t *testing.T) {
	_, err := New([]Pattern{
		{ID: "critical-1", ViolationType: "A", Severity: ltypes.SeverityCritical, DetectionRegex: `a`, ExampleClause: "a", ExternalCode: "X-1"},
	})
	require.Error(t, err)
}

func TestNewRejectsUnknownSeverity(t *testing.T) {
	_, err := New([]Pattern{
		{ID: "CRIT-001", ViolationType: "A", Severity: ltypes.Severity("urgent"), DetectionRegex: `a`, ExampleClause: "a", ExternalCode: "X-1"},
	})
	require.Error(t, err)
}
