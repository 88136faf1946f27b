package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselens/leaselens/internal/domain/catalog"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/testutil"
	lerrors "github.com/leaselens/leaselens/pkg/errors"
)

func newTestDetector(t *testing.T, embedder *testutil.FakeEmbedder, exemplars lease.ExemplarIndex) *Detector {
	t.Helper()
	return NewDetector(
		catalog.MustDefault(),
		embedder,
		exemplars,
		0.85, 5,
		testutil.NewMockLogger(),
		prometheus.NewCollector(),
	)
}

func TestDetector_RegexPass(t *testing.T) {
	d := newTestDetector(t, testutil.NewFakeEmbedder(32), testutil.NewFakeExemplarIndex())

	det := d.Detect(context.Background(), "Tenant shall provide a security deposit equal to three months' rent.")
	require.NotNil(t, det)
	assert.Equal(t, "regex", det.Method)
	assert.Equal(t, "CRIT-001", det.Pattern.ID)
}

func TestDetector_RegexWinsBeforeVector(t *testing.T) {
	embedder := testutil.NewFakeEmbedder(32)
	d := newTestDetector(t, embedder, testutil.NewFakeExemplarIndex())

	det := d.Detect(context.Background(), "Tenant waives the implied warranty of habitability entirely.")
	require.NotNil(t, det)
	assert.Equal(t, "regex", det.Method)
	// regex pass never touches the embedder
	assert.Equal(t, 0, embedder.Calls)
}

func TestDetector_VectorFallback(t *testing.T) {
	ctx := context.Background()
	embedder := testutil.NewFakeEmbedder(64)
	exemplars := testutil.NewFakeExemplarIndex()
	d := newTestDetector(t, embedder, exemplars)

	// index an exemplar whose vector is identical to the probe text's
	exemplarText := "occupant responsible for paying building heating charges apportioned by meter"
	vec, err := embedder.Embed(ctx, exemplarText)
	require.NoError(t, err)
	require.NoError(t, exemplars.IndexExemplars(ctx, []lease.Exemplar{{
		PatternID:     "MED-005",
		ViolationType: "Shared Meter Utility Charges",
		Text:          exemplarText,
		Embedding:     vec,
	}}))

	det := d.Detect(ctx, exemplarText)
	require.NotNil(t, det)
	assert.Equal(t, "vector", det.Method)
	assert.Equal(t, "MED-005", det.Pattern.ID)
}

func TestDetector_VectorBelowThresholdIsCompliant(t *testing.T) {
	ctx := context.Background()
	embedder := testutil.NewFakeEmbedder(64)
	exemplars := testutil.NewFakeExemplarIndex()
	d := newTestDetector(t, embedder, exemplars)

	vec, err := embedder.Embed(ctx, "completely unrelated exemplar about parking spaces")
	require.NoError(t, err)
	require.NoError(t, exemplars.IndexExemplars(ctx, []lease.Exemplar{{
		PatternID: "LOW-001",
		Embedding: vec,
	}}))

	det := d.Detect(ctx, "quiet enjoyment of the premises is assured")
	assert.Nil(t, det)
}

func TestDetector_EmbeddingFailureFailsOpen(t *testing.T) {
	embedder := testutil.NewFakeEmbedder(32)
	embedder.Err = lerrors.New(lerrors.ErrCodeEmbeddingFailed, "endpoint down")
	d := newTestDetector(t, embedder, testutil.NewFakeExemplarIndex())

	det := d.Detect(context.Background(), "some clause with no trigger phrases at all")
	assert.Nil(t, det)
}

func TestDetector_ExemplarLookupFailureFailsOpen(t *testing.T) {
	exemplars := testutil.NewFakeExemplarIndex()
	exemplars.Err = lerrors.New(lerrors.ErrCodeVectorSearch, "store down")
	d := newTestDetector(t, testutil.NewFakeEmbedder(32), exemplars)

	det := d.Detect(context.Background(), "some clause with no trigger phrases at all")
	assert.Nil(t, det)
}

func TestDetector_NilExemplarIndexDisablesFallback(t *testing.T) {
	embedder := testutil.NewFakeEmbedder(32)
	d := newTestDetector(t, embedder, nil)

	det := d.Detect(context.Background(), "nothing illegal in this sentence")
	assert.Nil(t, det)
	assert.Equal(t, 0, embedder.Calls)
}

func TestDetector_CatalogSelfConsistency(t *testing.T) {
	// every catalog example clause must resolve to its own pattern via regex
	d := newTestDetector(t, testutil.NewFakeEmbedder(32), testutil.NewFakeExemplarIndex())
	for _, p := range catalog.MustDefault().Patterns() {
		det := d.Detect(context.Background(), p.ExampleClause)
		require.NotNil(t, det, "example for %s not detected", p.ID)
		assert.Equal(t, "regex", det.Method)
	}
}
