package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

const (
	fieldPatternID     = "pattern_id"
	fieldViolationType = "violation_type"
	fieldSeverity      = "severity"
	fieldText          = "text"
	fieldEmbedding     = "embedding"

	maxIDLength   = 64
	maxTextLength = 2048
)

// ExemplarIndex stores embedded violation exemplars in a Milvus collection
// and serves nearest-neighbour lookups for the detector's vector fallback.
// It implements lease.ExemplarIndex.
type ExemplarIndex struct {
	mc         client.Client
	collection string
	dim        int
	logger     logging.Logger
}

// NewExemplarIndex connects to Milvus and ensures the exemplar collection
// exists, is indexed and loaded.
func NewExemplarIndex(ctx context.Context, cfg config.MilvusConfig, embeddingDim int, log logging.Logger) (*ExemplarIndex, error) {
	mc, err := client.NewClient(ctx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnavailable, "milvus connect")
	}

	idx := &ExemplarIndex{
		mc:         mc,
		collection: cfg.CollectionName,
		dim:        embeddingDim,
		logger:     log.Named("milvus"),
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *ExemplarIndex) ensureCollection(ctx context.Context) error {
	has, err := x.mc.HasCollection(ctx, x.collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "check exemplar collection")
	}
	if !has {
		schema := entity.NewSchema().
			WithName(x.collection).
			WithDescription("violation exemplars for vector-fallback detection").
			WithField(entity.NewField().WithName(fieldPatternID).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxIDLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldViolationType).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxTextLength)).
			WithField(entity.NewField().WithName(fieldSeverity).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxIDLength)).
			WithField(entity.NewField().WithName(fieldText).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxTextLength)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(x.dim)))

		if err := x.mc.CreateCollection(ctx, schema, 1); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "create exemplar collection")
		}

		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "build hnsw index")
		}
		if err := x.mc.CreateIndex(ctx, x.collection, fieldEmbedding, index, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "create exemplar index")
		}
		x.logger.Info("exemplar collection created", logging.String("collection", x.collection))
	}

	if err := x.mc.LoadCollection(ctx, x.collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "load exemplar collection")
	}
	return nil
}

// IndexExemplars upserts exemplars keyed by pattern id.
func (x *ExemplarIndex) IndexExemplars(ctx context.Context, exemplars []lease.Exemplar) error {
	if len(exemplars) == 0 {
		return nil
	}

	ids := make([]string, len(exemplars))
	types := make([]string, len(exemplars))
	severities := make([]string, len(exemplars))
	texts := make([]string, len(exemplars))
	vectors := make([][]float32, len(exemplars))
	for i, e := range exemplars {
		if len(e.Embedding) != x.dim {
			return errors.Newf(errors.ErrCodeValidation,
				"exemplar %s: embedding has dimension %d, want %d", e.PatternID, len(e.Embedding), x.dim)
		}
		ids[i] = e.PatternID
		types[i] = e.ViolationType
		severities[i] = string(e.Severity)
		texts[i] = e.Text
		vectors[i] = e.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldPatternID, ids),
		entity.NewColumnVarChar(fieldViolationType, types),
		entity.NewColumnVarChar(fieldSeverity, severities),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnFloatVector(fieldEmbedding, x.dim, vectors),
	}
	if _, err := x.mc.Upsert(ctx, x.collection, "", columns...); err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "upsert exemplars")
	}
	return nil
}

// Nearest returns the k most similar exemplars for the given vector, best
// first.
func (x *ExemplarIndex) Nearest(ctx context.Context, vector []float32, k int) ([]lease.ExemplarMatch, error) {
	if len(vector) != x.dim {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"query vector has dimension %d, want %d", len(vector), x.dim)
	}
	if k <= 0 {
		k = 5
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "search params")
	}

	results, err := x.mc.Search(
		ctx,
		x.collection,
		nil,
		"",
		[]string{fieldPatternID, fieldViolationType},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding,
		entity.COSINE,
		k,
		sp,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorSearch, "exemplar search")
	}

	var matches []lease.ExemplarMatch
	for _, result := range results {
		idCol, ok := result.Fields.GetColumn(fieldPatternID).(*entity.ColumnVarChar)
		if !ok {
			return nil, errors.New(errors.ErrCodeVectorSearch, "unexpected pattern_id column type")
		}
		typeCol, _ := result.Fields.GetColumn(fieldViolationType).(*entity.ColumnVarChar)
		for i := 0; i < result.ResultCount; i++ {
			id, err := idCol.ValueByIdx(i)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeVectorSearch, "read pattern id")
			}
			violationType := ""
			if typeCol != nil {
				violationType, _ = typeCol.ValueByIdx(i)
			}
			matches = append(matches, lease.ExemplarMatch{
				PatternID:     id,
				ViolationType: violationType,
				// COSINE scores arrive in [-1, 1], higher is closer
				Similarity: float64(result.Scores[i]),
			})
		}
	}
	return matches, nil
}

// Close releases the Milvus connection.
func (x *ExemplarIndex) Close() error {
	return x.mc.Close()
}
