package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselens/leaselens/internal/domain/catalog"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/testutil"
	lerrors "github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

type pipelineFixture struct {
	pipeline *Pipeline
	embedder *testutil.FakeEmbedder
	analyses *testutil.FakeAnalysisRepo
	clauses  *testutil.FakeClauseIndex
	logger   *testutil.MockLogger
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	embedder := testutil.NewFakeEmbedder(32)
	logger := testutil.NewMockLogger()
	metrics := prometheus.NewCollector()
	detector := NewDetector(catalog.MustDefault(), embedder, testutil.NewFakeExemplarIndex(), 0.85, 5, logger, metrics)
	analyses := testutil.NewFakeAnalysisRepo()
	clauses := testutil.NewFakeClauseIndex()
	return &pipelineFixture{
		pipeline: NewPipeline(detector, embedder, analyses, clauses, 0.85, 30*24*time.Hour, logger, metrics),
		embedder: embedder,
		analyses: analyses,
		clauses:  clauses,
		logger:   logger,
	}
}

// Lease text with one excessive-deposit trigger yields exactly one Critical
// violation with the housing-code reference.
func TestPipeline_ExcessiveDepositLease(t *testing.T) {
	fx := newPipelineFixture(t)

	result, err := fx.pipeline.Process(context.Background(), "lease-a", []lease.ExtractedClause{
		{Text: "Tenant shall provide a security deposit equal to three months' rent.", Section: "deposit"},
		{Text: "Rent is due on the first of each month.", Section: "rent"},
		{Text: "Landlord shall maintain the premises in good repair.", Section: "repairs"},
	})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "Excessive Security Deposit", v.ViolationType)
	assert.Equal(t, ltypes.SeverityCritical, v.Severity)
	assert.Contains(t, v.LegalReference, "NYC Housing Maintenance Code")
	assert.Equal(t, "lease-a_0", v.ClauseID)

	assert.Equal(t, 3, result.Summary.TotalClauses)
	assert.Equal(t, 1, result.Summary.FlaggedClauses)
	assert.Equal(t, 1, result.Summary.Critical)

	flagged := result.Clauses[0]
	assert.True(t, flagged.Flagged)
	assert.InDelta(t, 0.85, flagged.ConfidenceScore, 1e-9)
}

// A lease with no trigger phrases yields zero violations and zero-confidence
// clauses.
func TestPipeline_CompliantLease(t *testing.T) {
	fx := newPipelineFixture(t)

	result, err := fx.pipeline.Process(context.Background(), "lease-b", []lease.ExtractedClause{
		{Text: "Rent is due on the first of each month.", Section: "rent"},
		{Text: "Landlord shall give 24 hours' written notice before any entry.", Section: "access"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Violations)
	assert.Equal(t, 0, result.Summary.FlaggedClauses)
	for _, c := range result.Clauses {
		assert.False(t, c.Flagged)
		assert.Equal(t, 0.0, c.ConfidenceScore)
	}
}

func TestPipeline_SkipsFailedClauses(t *testing.T) {
	fx := newPipelineFixture(t)

	result, err := fx.pipeline.Process(context.Background(), "lease-c", []lease.ExtractedClause{
		{Text: "Rent is due on the first of each month.", Section: "rent"},
		{Text: "   ", Section: "empty"}, // fails validation, skipped
		{Text: "Pets are permitted with written consent.", Section: "pets"},
	})
	require.NoError(t, err)

	require.Len(t, result.Clauses, 2)
	assert.Equal(t, 2, result.Summary.TotalClauses)
	// surviving clauses keep ids derived from their original positions
	assert.Equal(t, "lease-c_0", result.Clauses[0].ID)
	assert.Equal(t, "lease-c_2", result.Clauses[1].ID)
	assert.True(t, fx.logger.HasMessage("warn", "clause skipped"))
}

func TestPipeline_AllClausesFailStillReturnsResult(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.embedder.Err = lerrors.New(lerrors.ErrCodeEmbeddingFailed, "endpoint down")

	result, err := fx.pipeline.Process(context.Background(), "lease-d", []lease.ExtractedClause{
		{Text: "Rent is due on the first of each month."},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Clauses)
	assert.Equal(t, 0, result.Summary.TotalClauses)
}

func TestPipeline_PersistenceFailureDoesNotFail(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.analyses.SaveErr = lerrors.New(lerrors.ErrCodeStoreWrite, "redis down")
	fx.clauses.IndexErr = lerrors.New(lerrors.ErrCodeIndexingFailed, "opensearch down")

	result, err := fx.pipeline.Process(context.Background(), "lease-e", []lease.ExtractedClause{
		{Text: "Rent is due on the first of each month."},
	})
	require.NoError(t, err)
	require.Len(t, result.Clauses, 1)
	assert.True(t, fx.logger.HasMessage("error", "analysis persistence failed"))
	assert.True(t, fx.logger.HasMessage("error", "clause indexing failed"))
}

func TestPipeline_PersistsResultAndClauses(t *testing.T) {
	fx := newPipelineFixture(t)
	ctx := context.Background()

	_, err := fx.pipeline.Process(ctx, "lease-f", []lease.ExtractedClause{
		{Text: "Subletting of the premises is strictly prohibited under any circumstances."},
		{Text: "Rent is due on the first of each month."},
	})
	require.NoError(t, err)

	stored, err := fx.analyses.Get(ctx, "lease-f")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Summary.FlaggedClauses)
	assert.Equal(t, 30*24*time.Hour, fx.analyses.TTLs["lease-f"])
	assert.Equal(t, 2, fx.clauses.Len())
}

func TestPipeline_EmptyInputRejected(t *testing.T) {
	fx := newPipelineFixture(t)

	_, err := fx.pipeline.Process(context.Background(), "lease-g", nil)
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeValidation))

	_, err = fx.pipeline.Process(context.Background(), "", []lease.ExtractedClause{{Text: "x"}})
	require.Error(t, err)
}
