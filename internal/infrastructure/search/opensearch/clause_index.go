package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

const clauseIndexBase = "clauses"

// clauseDoc is the index document shape. Expiry is enforced at query time
// through the expiresAt range filter; a periodic delete-by-query cleans up
// dead documents out of band.
type clauseDoc struct {
	LeaseID        string    `json:"leaseId"`
	Text           string    `json:"text"`
	Section        string    `json:"section,omitempty"`
	Flagged        bool      `json:"flagged"`
	Severity       string    `json:"severity,omitempty"`
	ViolationType  string    `json:"violationType,omitempty"`
	LegalReference string    `json:"legalReference,omitempty"`
	Confidence     float64   `json:"confidence"`
	Embedding      []float32 `json:"embedding,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// ClauseIndex stores analyzed clauses for hybrid lexical+vector retrieval.
// It implements lease.ClauseIndex.
type ClauseIndex struct {
	client *Client
	dim    int
}

// NewClauseIndex builds the index accessor and creates the backing index
// with its knn mapping when absent.
func NewClauseIndex(ctx context.Context, client *Client, embeddingDim int) (*ClauseIndex, error) {
	ci := &ClauseIndex{client: client, dim: embeddingDim}
	if err := ci.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return ci, nil
}

func (ci *ClauseIndex) name() string {
	return ci.client.indexName(clauseIndexBase)
}

func (ci *ClauseIndex) ensureIndex(ctx context.Context) error {
	existsReq := opensearchapi.IndicesExistsRequest{Index: []string{ci.name()}}
	resp, err := existsReq.Do(ctx, ci.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "check clause index")
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{"knn": true},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"leaseId":        map[string]interface{}{"type": "keyword"},
				"text":           map[string]interface{}{"type": "text"},
				"section":        map[string]interface{}{"type": "keyword"},
				"flagged":        map[string]interface{}{"type": "boolean"},
				"severity":       map[string]interface{}{"type": "keyword"},
				"violationType":  map[string]interface{}{"type": "keyword"},
				"legalReference": map[string]interface{}{"type": "text"},
				"confidence":     map[string]interface{}{"type": "double"},
				"embedding": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": ci.dim,
				},
				"createdAt": map[string]interface{}{"type": "date"},
				"expiresAt": map[string]interface{}{"type": "date"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal clause mapping")
	}

	createReq := opensearchapi.IndicesCreateRequest{Index: ci.name(), Body: bytes.NewReader(body)}
	createResp, err := createReq.Do(ctx, ci.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create clause index")
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return errors.Newf(errors.ErrCodeInternal, "create clause index: %s", createResp.Status())
	}
	ci.client.logger.Info("clause index created", logging.String("index", ci.name()))
	return nil
}

// IndexClauses bulk-upserts clauses keyed by their deterministic ids.
func (ci *ClauseIndex) IndexClauses(ctx context.Context, clauses []lease.Clause, ttl time.Duration) error {
	if len(clauses) == 0 {
		return nil
	}
	now := time.Now().UTC()

	var buf bytes.Buffer
	for _, c := range clauses {
		meta := map[string]map[string]string{
			"index": {"_index": ci.name(), "_id": c.ID},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "marshal bulk meta")
		}
		doc := clauseDoc{
			LeaseID:        c.LeaseID,
			Text:           c.Text,
			Section:        c.Section,
			Flagged:        c.Flagged,
			Severity:       string(c.Severity),
			ViolationType:  c.ViolationType,
			LegalReference: c.LegalReference,
			Confidence:     c.ConfidenceScore,
			Embedding:      c.Embedding,
			CreatedAt:      c.CreatedAt,
			ExpiresAt:      now.Add(ttl),
		}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "marshal clause doc")
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	req := opensearchapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	resp, err := req.Do(ctx, ci.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "bulk index clauses")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeIndexingFailed, "bulk index clauses: %s", resp.Status())
	}
	return nil
}

// HybridSearch runs one lexical+vector query. The lexical match drives the
// primary score; vector similarity is recomputed client-side from the stored
// embedding so the two signals stay separable for re-ranking.
func (ci *ClauseIndex) HybridSearch(ctx context.Context, q lease.HybridQuery) ([]lease.Candidate, error) {
	dsl := buildHybridDSL(q)
	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal search dsl")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{ci.name()},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, ci.client.os)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "clause search")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeSearchFailed, "clause search: %s", resp.Status())
	}

	return parseCandidates(resp.Body, q.Vector)
}

// DeleteByLease removes every clause document of one lease.
func (ci *ClauseIndex) DeleteByLease(ctx context.Context, leaseID string) error {
	dsl := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"leaseId": leaseID},
		},
	}
	body, err := json.Marshal(dsl)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal delete query")
	}
	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{ci.name()},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, ci.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreWrite, "delete clauses")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeStoreWrite, "delete clauses: %s", resp.Status())
	}
	return nil
}

// PurgeExpired deletes documents whose expiresAt has passed and returns how
// many were removed. The range filter already hides them from queries; this
// reclaims the storage.
func (ci *ClauseIndex) PurgeExpired(ctx context.Context) (int64, error) {
	dsl := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"expiresAt": map[string]interface{}{"lte": "now"},
			},
		},
	}
	body, err := json.Marshal(dsl)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "marshal purge query")
	}
	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{ci.name()},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, ci.client.os)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStoreWrite, "purge expired clauses")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return 0, errors.Newf(errors.ErrCodeStoreWrite, "purge expired clauses: %s", resp.Status())
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "decode purge response")
	}
	return parsed.Deleted, nil
}

// buildHybridDSL assembles the query: lexical match plus optional knn
// clause, restricted to live documents of the requested lease.
func buildHybridDSL(q lease.HybridQuery) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"expiresAt": map[string]interface{}{"gt": "now"},
			},
		},
	}
	if q.LeaseID != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"leaseId": q.LeaseID},
		})
	}
	for field, value := range q.Filters {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}

	should := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{
				"text": map[string]interface{}{"query": q.Text},
			},
		},
	}
	if len(q.Vector) > 0 {
		should = append(should, map[string]interface{}{
			"knn": map[string]interface{}{
				"embedding": map[string]interface{}{
					"vector": q.Vector,
					"k":      q.Limit,
				},
			},
		})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               filter,
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{"text": map[string]interface{}{}},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID        string              `json:"_id"`
			Score     float64             `json:"_score"`
			Source    clauseDoc           `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseCandidates(body io.Reader, queryVector []float32) ([]lease.Candidate, error) {
	var parsed searchResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode search response")
	}

	candidates := make([]lease.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		sim := 0.0
		if len(queryVector) > 0 {
			sim = cosine(queryVector, hit.Source.Embedding)
		}
		candidates = append(candidates, lease.Candidate{
			Clause: lease.Clause{
				ID:              hit.ID,
				LeaseID:         hit.Source.LeaseID,
				Text:            hit.Source.Text,
				Section:         hit.Source.Section,
				Flagged:         hit.Source.Flagged,
				Severity:        ltypes.Severity(hit.Source.Severity),
				ViolationType:   hit.Source.ViolationType,
				LegalReference:  hit.Source.LegalReference,
				ConfidenceScore: hit.Source.Confidence,
				CreatedAt:       hit.Source.CreatedAt,
			},
			Score:            hit.Score,
			VectorSimilarity: sim,
			Highlights:       hit.Highlight["text"],
		})
	}
	return candidates, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
