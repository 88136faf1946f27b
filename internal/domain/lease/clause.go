package lease

import (
	"fmt"
	"strings"
	"time"

	"github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// ExtractedClause is one unit of lease text as delivered by the upstream
// extraction step, before any analysis has run.
type ExtractedClause struct {
	Text    string `json:"text"`
	Section string `json:"section"`
}

// Validate rejects clauses that cannot be analyzed.
func (e ExtractedClause) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return errors.New(errors.ErrCodeValidation, "clause text is empty")
	}
	return nil
}

// Clause is one analyzed provision of a lease document. A clause is owned by
// exactly one document and is immutable after the pipeline assembles it; only
// the store's TTL expiry removes it.
type Clause struct {
	ID              string          `json:"id"`
	LeaseID         string          `json:"leaseId"`
	Text            string          `json:"text"`
	Section         string          `json:"section"`
	Embedding       []float32       `json:"embedding,omitempty"`
	Flagged         bool            `json:"flagged"`
	Severity        ltypes.Severity `json:"severity,omitempty"`
	ViolationType   string          `json:"violationType,omitempty"`
	LegalReference  string          `json:"legalReference,omitempty"`
	ConfidenceScore float64         `json:"confidenceScore"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ClauseID derives the deterministic clause identifier. Re-analysis of the
// same document produces the same ids, which makes store writes idempotent
// upserts.
func ClauseID(leaseID string, index int) string {
	return fmt.Sprintf("%s_%d", leaseID, index)
}

// Violation is the finding derived from a flagged clause. It is always
// recomputable from the clause list and never stored on its own.
type Violation struct {
	ClauseID       string          `json:"clauseId"`
	ViolationType  string          `json:"violationType"`
	Description    string          `json:"description"`
	LegalReference string          `json:"legalReference"`
	Severity       ltypes.Severity `json:"severity"`
}

// Summary holds the aggregate counts for one analyzed document.
type Summary struct {
	TotalClauses   int `json:"totalClauses"`
	FlaggedClauses int `json:"flaggedClauses"`
	Critical       int `json:"critical"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
}

// AnalysisResult is the aggregate produced by one pipeline run over a
// document. Clauses keep their input order.
type AnalysisResult struct {
	LeaseID    string      `json:"leaseId"`
	Clauses    []Clause    `json:"clauses"`
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
	AnalyzedAt time.Time   `json:"analyzedAt"`
}

// DeriveViolations rebuilds the violation list from the clause list. A
// flagged clause without a resolved severity still yields a violation entry
// carrying SeverityUnknown; it counts toward FlaggedClauses but no severity
// bucket.
func DeriveViolations(clauses []Clause) []Violation {
	violations := make([]Violation, 0, len(clauses))
	for _, c := range clauses {
		if !c.Flagged {
			continue
		}
		violations = append(violations, Violation{
			ClauseID:       c.ID,
			ViolationType:  c.ViolationType,
			Description:    c.Text,
			LegalReference: c.LegalReference,
			Severity:       c.Severity,
		})
	}
	return violations
}

// Summarize is a pure function of the final clause and violation lists.
func Summarize(clauses []Clause, violations []Violation) Summary {
	s := Summary{TotalClauses: len(clauses)}
	for _, c := range clauses {
		if c.Flagged {
			s.FlaggedClauses++
		}
	}
	for _, v := range violations {
		switch v.Severity {
		case ltypes.SeverityCritical:
			s.Critical++
		case ltypes.SeverityHigh:
			s.High++
		case ltypes.SeverityMedium:
			s.Medium++
		case ltypes.SeverityLow:
			s.Low++
		}
	}
	return s
}

// FlaggedClauses returns the flagged subset in document order.
func (r *AnalysisResult) FlaggedClauses() []Clause {
	out := make([]Clause, 0, r.Summary.FlaggedClauses)
	for _, c := range r.Clauses {
		if c.Flagged {
			out = append(out, c)
		}
	}
	return out
}

// CompliantClauses returns the unflagged subset in document order, capped at
// limit when limit > 0.
func (r *AnalysisResult) CompliantClauses(limit int) []Clause {
	out := make([]Clause, 0, len(r.Clauses))
	for _, c := range r.Clauses {
		if c.Flagged {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
