package qa

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/testutil"
	lerrors "github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

type qaFixture struct {
	orch          *Orchestrator
	analyses      *testutil.FakeAnalysisRepo
	conversations *testutil.FakeConversationRepo
	completer     *testutil.FakeCompleter
}

func newQAFixture(t *testing.T) *qaFixture {
	t.Helper()
	logger := testutil.NewMockLogger()
	metrics := prometheus.NewCollector()
	analyses := testutil.NewFakeAnalysisRepo()
	conversations := testutil.NewFakeConversationRepo()
	completer := testutil.NewFakeCompleter("Your deposit clause appears to violate the one-month cap.")
	cache := semcache.New(nil, semcache.Options{}, logger, metrics)
	orch := NewOrchestrator(analyses, conversations, cache, completer,
		Options{MaxTurns: 20, TTL: 7 * 24 * time.Hour}, logger, metrics)
	return &qaFixture{orch: orch, analyses: analyses, conversations: conversations, completer: completer}
}

func seedAnalysis(t *testing.T, repo *testutil.FakeAnalysisRepo, leaseID string) *lease.AnalysisResult {
	t.Helper()
	clauses := []lease.Clause{
		{
			ID: leaseID + "_0", LeaseID: leaseID, Flagged: true,
			Severity: ltypes.SeverityCritical, ViolationType: "Excessive Security Deposit",
			LegalReference: "NYC Housing Maintenance Code § 27-2009",
			Text:           "Tenant shall provide a security deposit equal to three months' rent.",
		},
		{ID: leaseID + "_1", LeaseID: leaseID, Text: "Rent is due on the first of each month."},
	}
	violations := lease.DeriveViolations(clauses)
	result := &lease.AnalysisResult{
		LeaseID:    leaseID,
		Clauses:    clauses,
		Violations: violations,
		Summary:    lease.Summarize(clauses, violations),
	}
	require.NoError(t, repo.Save(context.Background(), result, time.Hour))
	return result
}

// With no stored analysis the orchestrator answers the fixed fallback,
// never touches the LLM and still records both turns.
func TestAsk_NoContext(t *testing.T) {
	fx := newQAFixture(t)
	ctx := context.Background()

	answer, err := fx.orch.Ask(ctx, "unknown-lease", "u1", "Is my deposit legal?")
	require.NoError(t, err)

	assert.Equal(t, StateNoContext, answer.State)
	assert.Equal(t, FallbackNoContext, answer.Text)
	assert.Equal(t, 0, fx.completer.CallCount())

	conv, err := fx.conversations.Get(ctx, "unknown-lease", "u1")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, ltypes.RoleUser, conv.Turns[0].Role)
	assert.Equal(t, "Is my deposit legal?", conv.Turns[0].Content)
	assert.Equal(t, ltypes.RoleAssistant, conv.Turns[1].Role)
	assert.Equal(t, FallbackNoContext, conv.Turns[1].Content)
}

// Asking the identical question twice makes exactly one LLM call; the second
// answer comes from the cache.
func TestAsk_IdenticalQuestionHitsCache(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")
	ctx := context.Background()

	first, err := fx.orch.Ask(ctx, "lease-1", "u1", "Is my security deposit too high?")
	require.NoError(t, err)
	assert.Equal(t, StateComputeFresh, first.State)

	second, err := fx.orch.Ask(ctx, "lease-1", "u1", "Is my security deposit too high?")
	require.NoError(t, err)
	assert.Equal(t, StateCacheHit, second.State)
	assert.Equal(t, first.Text, second.Text)

	assert.Equal(t, 1, fx.completer.CallCount())
}

func TestAsk_AppendsDisclaimer(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")

	answer, err := fx.orch.Ask(context.Background(), "lease-1", "u1", "What should I do?")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(answer.Text, "Your deposit clause"))
	assert.True(t, strings.HasSuffix(answer.Text, Disclaimer))
	assert.Contains(t, answer.Text, "not legal advice")
}

func TestAsk_PromptCarriesAnalysisAndQuestion(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")

	_, err := fx.orch.Ask(context.Background(), "lease-1", "u1", "Can I get my deposit back?")
	require.NoError(t, err)

	require.Len(t, fx.completer.Prompts, 1)
	prompt := strings.Join(fx.completer.Prompts[0], "\n")
	assert.Contains(t, prompt, "educational information")
	assert.Contains(t, prompt, "three months' rent")
	assert.Contains(t, prompt, "Excessive Security Deposit")
	assert.Contains(t, prompt, "NYC Housing Maintenance Code")
	assert.Contains(t, prompt, "Rent is due on the first of each month.")
	assert.Contains(t, prompt, "Can I get my deposit back?")
}

func TestAsk_FreshAnswerRecordsHistory(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")
	ctx := context.Background()

	answer, err := fx.orch.Ask(ctx, "lease-1", "u1", "Is the late fee enforceable?")
	require.NoError(t, err)

	conv, err := fx.conversations.Get(ctx, "lease-1", "u1")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, "Is the late fee enforceable?", conv.Turns[0].Content)
	assert.Equal(t, answer.Text, conv.Turns[1].Content)
}

func TestAsk_HistoryBounded(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")
	orch := NewOrchestrator(fx.analyses, fx.conversations, nil, fx.completer,
		Options{MaxTurns: 4, TTL: time.Hour}, testutil.NewMockLogger(), prometheus.NewCollector())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := orch.Ask(ctx, "lease-1", "u1", fmt.Sprintf("question number %d", i))
		require.NoError(t, err)
	}

	conv, err := fx.conversations.Get(ctx, "lease-1", "u1")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 4)
	assert.Equal(t, "question number 3", conv.Turns[0].Content)
	assert.Equal(t, "question number 4", conv.Turns[2].Content)
}

func TestAsk_LLMFailurePropagates(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")
	fx.completer.Err = lerrors.New(lerrors.ErrCodeLLMUnavailable, "model endpoint down")

	_, err := fx.orch.Ask(context.Background(), "lease-1", "u1", "Is my lease valid?")
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeLLMUnavailable))

	// failed answers leave no history behind
	conv, err2 := fx.conversations.Get(context.Background(), "lease-1", "u1")
	require.NoError(t, err2)
	assert.Empty(t, conv.Turns)
}

func TestAsk_ValidationErrors(t *testing.T) {
	fx := newQAFixture(t)

	_, err := fx.orch.Ask(context.Background(), "", "u1", "question")
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeValidation))

	_, err = fx.orch.Ask(context.Background(), "lease-1", "u1", "   ")
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeValidation))
}

func TestHistory(t *testing.T) {
	fx := newQAFixture(t)
	seedAnalysis(t, fx.analyses, "lease-1")
	ctx := context.Background()

	_, err := fx.orch.Ask(ctx, "lease-1", "u1", "first question")
	require.NoError(t, err)

	conv, err := fx.orch.History(ctx, "lease-1", "u1")
	require.NoError(t, err)
	assert.Len(t, conv.Turns, 2)

	_, err = fx.orch.History(ctx, "", "u1")
	require.Error(t, err)
}
