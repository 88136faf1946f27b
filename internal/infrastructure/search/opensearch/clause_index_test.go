package opensearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselens/leaselens/internal/domain/lease"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

func TestBuildHybridDSL(t *testing.T) {
	dsl := buildHybridDSL(lease.HybridQuery{
		Text:    "security deposit",
		Vector:  []float32{0.1, 0.2},
		LeaseID: "l1",
		Filters: map[string]string{"severity": "Critical"},
		Limit:   7,
	})

	assert.Equal(t, 7, dsl["size"])

	boolQuery := dsl["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]interface{})
	require.Len(t, should, 2, "expected a match clause and a knn clause")

	filter := boolQuery["filter"].([]interface{})
	// expiry window, lease restriction and the severity filter
	require.Len(t, filter, 3)

	_, hasHighlight := dsl["highlight"]
	assert.True(t, hasHighlight)
}

func TestBuildHybridDSL_NoVectorNoLease(t *testing.T) {
	dsl := buildHybridDSL(lease.HybridQuery{Text: "late fee"})

	boolQuery := dsl["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["should"].([]interface{}), 1)
	assert.Len(t, boolQuery["filter"].([]interface{}), 1)
	assert.Equal(t, 10, dsl["size"])
}

func TestParseCandidates(t *testing.T) {
	payload := `{
		"hits": {"hits": [
			{
				"_id": "l1_0",
				"_score": 4.2,
				"_source": {
					"leaseId": "l1",
					"text": "Tenant shall provide a security deposit equal to three months' rent.",
					"section": "deposit",
					"flagged": true,
					"severity": "Critical",
					"violationType": "Excessive Security Deposit",
					"confidence": 0.85,
					"embedding": [1, 0]
				},
				"highlight": {"text": ["a <em>security deposit</em> equal"]}
			},
			{
				"_id": "l1_1",
				"_score": 1.1,
				"_source": {"leaseId": "l1", "text": "Rent is due monthly.", "embedding": [0, 1]}
			}
		]}
	}`

	candidates, err := parseCandidates(strings.NewReader(payload), []float32{1, 0})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "l1_0", first.Clause.ID)
	assert.True(t, first.Clause.Flagged)
	assert.Equal(t, ltypes.SeverityCritical, first.Clause.Severity)
	assert.Equal(t, 4.2, first.Score)
	assert.InDelta(t, 1.0, first.VectorSimilarity, 1e-9)
	assert.Equal(t, []string{"a <em>security deposit</em> equal"}, first.Highlights)

	assert.InDelta(t, 0.0, candidates[1].VectorSimilarity, 1e-9)
}

func TestParseCandidates_NoQueryVector(t *testing.T) {
	payload := `{"hits": {"hits": [{"_id": "a", "_score": 2, "_source": {"leaseId": "l1", "text": "x", "embedding": [1,0]}}]}}`

	candidates, err := parseCandidates(strings.NewReader(payload), nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0.0, candidates[0].VectorSimilarity)
}

func TestParseCandidates_Malformed(t *testing.T) {
	_, err := parseCandidates(strings.NewReader("{not json"), nil)
	assert.Error(t, err)
}

func TestIndexName(t *testing.T) {
	c := &Client{prefix: "leaselens"}
	assert.Equal(t, "leaselens-clauses", c.indexName(clauseIndexBase))

	bare := &Client{}
	assert.Equal(t, "clauses", bare.indexName(clauseIndexBase))
}
