package ai

import "context"

// StubCompleter returns a fixed completion. It stands in for the LLM in
// local development and tests, selected when no API key is configured.
type StubCompleter struct {
	Response string
}

// NewStubCompleter builds a StubCompleter with a generic canned answer.
func NewStubCompleter() *StubCompleter {
	return &StubCompleter{
		Response: "Based on the analysis of your lease, please review the flagged clauses " +
			"and their legal references. A language model is not configured on this " +
			"deployment, so no tailored answer can be generated.",
	}
}

func (s *StubCompleter) Complete(_ context.Context, _ []Message) (string, error) {
	return s.Response, nil
}
