// Package lease defines the shared enumerations of the lease-analysis domain.
// They live under pkg/types so that both internal packages and the public
// client can reference them without importing internal code.
package lease

import "fmt"

// Severity classifies how serious a detected violation is. The zero value is
// SeverityUnknown, used for flagged clauses whose severity could not be
// resolved; such clauses count as flagged but fall into no severity bucket.
type Severity string

const (
	SeverityUnknown  Severity = ""
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// SeveritiesByRank lists the known severities from most to least severe.
// The violation catalog is evaluated in this order.
var SeveritiesByRank = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
}

// Valid reports whether s is one of the known severities (unknown excluded).
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// ParseSeverity converts a string into a Severity, accepting any casing of the
// canonical names. Unrecognized input yields SeverityUnknown and an error.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "Critical", "critical", "CRITICAL":
		return SeverityCritical, nil
	case "High", "high", "HIGH":
		return SeverityHigh, nil
	case "Medium", "medium", "MEDIUM":
		return SeverityMedium, nil
	case "Low", "low", "LOW":
		return SeverityLow, nil
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", s)
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language codes supported by the query-expansion terminology tables.
const (
	LangEnglish = "en"
	LangSpanish = "es"
	LangFrench  = "fr"
	LangGerman  = "de"
)
