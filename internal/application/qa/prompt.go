package qa

import (
	"fmt"
	"strings"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/ai"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

const systemPrompt = `You are a housing-law assistant for New York City residential tenants.
You provide educational information about lease terms and NYC housing law.
You are not a lawyer and you do not provide legal advice.
Base your answers on the lease analysis supplied below and cite the legal references it contains.
If the analysis does not cover the question, say so plainly.`

// compliantSampleSize bounds how many unflagged clauses the prompt includes.
const compliantSampleSize = 5

// historyTurnLimit bounds how much conversation history is replayed into the
// prompt.
const historyTurnLimit = 6

// buildMessages assembles the chat prompt for one question.
func buildMessages(analysis *lease.AnalysisResult, history []lease.Turn, question string) []ai.Message {
	var b strings.Builder

	b.WriteString("Lease analysis summary:\n")
	fmt.Fprintf(&b, "- %d clauses analyzed, %d flagged\n",
		analysis.Summary.TotalClauses, analysis.Summary.FlaggedClauses)
	fmt.Fprintf(&b, "- severity counts: %d critical, %d high, %d medium, %d low\n\n",
		analysis.Summary.Critical, analysis.Summary.High, analysis.Summary.Medium, analysis.Summary.Low)

	flagged := analysis.FlaggedClauses()
	if len(flagged) > 0 {
		b.WriteString("Flagged clauses:\n")
		for _, c := range flagged {
			severity := string(c.Severity)
			if severity == string(ltypes.SeverityUnknown) {
				severity = "unclassified"
			}
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", severity, c.Text, c.ViolationType)
		}
		b.WriteString("\n")
	}

	if sample := analysis.CompliantClauses(compliantSampleSize); len(sample) > 0 {
		b.WriteString("Sample of compliant clauses:\n")
		for _, c := range sample {
			fmt.Fprintf(&b, "- %s\n", c.Text)
		}
		b.WriteString("\n")
	}

	if len(analysis.Violations) > 0 {
		b.WriteString("Identified violations:\n")
		for _, v := range analysis.Violations {
			fmt.Fprintf(&b, "- %s: %s\n", v.ViolationType, v.LegalReference)
		}
		b.WriteString("\n")
	}

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}

	if len(history) > historyTurnLimit {
		history = history[len(history)-historyTurnLimit:]
	}
	for _, turn := range history {
		role := ai.RoleUser
		if turn.Role == ltypes.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: question})
	return messages
}
