package analysis

import (
	"context"
	"time"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/pkg/errors"
)

// EmbedderForClauses is the narrow embedding surface the pipeline needs.
type EmbedderForClauses interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pipeline runs embedding and violation detection over every clause of a
// document and assembles the AnalysisResult. Individual clause failures are
// logged and skipped; storage failures are logged and the computed result is
// returned anyway. Only empty input is a hard error.
type Pipeline struct {
	detector   *Detector
	embedder   EmbedderForClauses
	analyses   lease.AnalysisRepository
	clauses    lease.ClauseIndex
	confidence float64
	ttl        time.Duration
	logger     logging.Logger
	metrics    *prometheus.Collector
}

// NewPipeline wires a Pipeline. analyses and clauses may be nil, in which
// case results are computed but not persisted.
func NewPipeline(
	detector *Detector,
	embedder EmbedderForClauses,
	analyses lease.AnalysisRepository,
	clauses lease.ClauseIndex,
	confidence float64,
	ttl time.Duration,
	logger logging.Logger,
	metrics *prometheus.Collector,
) *Pipeline {
	return &Pipeline{
		detector:   detector,
		embedder:   embedder,
		analyses:   analyses,
		clauses:    clauses,
		confidence: confidence,
		ttl:        ttl,
		logger:     logger.Named("pipeline"),
		metrics:    metrics,
	}
}

// Process analyzes the extracted clauses of one document.
func (p *Pipeline) Process(ctx context.Context, leaseID string, extracted []lease.ExtractedClause) (*lease.AnalysisResult, error) {
	if leaseID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "leaseId is required")
	}
	if len(extracted) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "no clauses to process")
	}

	start := time.Now()
	log := p.logger.With(logging.String("lease_id", leaseID))

	processed := make([]lease.Clause, 0, len(extracted))
	for i, ec := range extracted {
		clause, err := p.processOne(ctx, leaseID, i, ec)
		if err != nil {
			// skip the clause, keep the document going
			log.Warn("clause skipped",
				logging.Int("index", i),
				logging.Err(err))
			p.metrics.ClausesProcessed.WithLabelValues("skipped").Inc()
			continue
		}
		processed = append(processed, *clause)
		p.metrics.ClausesProcessed.WithLabelValues("ok").Inc()
	}

	violations := lease.DeriveViolations(processed)
	result := &lease.AnalysisResult{
		LeaseID:    leaseID,
		Clauses:    processed,
		Violations: violations,
		Summary:    lease.Summarize(processed, violations),
		AnalyzedAt: time.Now().UTC(),
	}

	p.persist(ctx, log, result)
	p.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	log.Info("document analyzed",
		logging.Int("clauses", result.Summary.TotalClauses),
		logging.Int("flagged", result.Summary.FlaggedClauses),
		logging.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (p *Pipeline) processOne(ctx context.Context, leaseID string, index int, ec lease.ExtractedClause) (*lease.Clause, error) {
	if err := ec.Validate(); err != nil {
		return nil, err
	}

	embedding, err := p.embedder.Embed(ctx, ec.Text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeClauseProcessing, "embed clause")
	}

	clause := &lease.Clause{
		ID:        lease.ClauseID(leaseID, index),
		LeaseID:   leaseID,
		Text:      ec.Text,
		Section:   ec.Section,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}

	if det := p.detector.Detect(ctx, ec.Text); det != nil {
		clause.Flagged = true
		clause.Severity = det.Pattern.Severity
		clause.ViolationType = det.Pattern.ViolationType
		clause.LegalReference = det.Pattern.LegalReference
		clause.ConfidenceScore = p.confidence
	}
	return clause, nil
}

// persist is best effort: the analysis is returned to the caller whether or
// not either write succeeds.
func (p *Pipeline) persist(ctx context.Context, log logging.Logger, result *lease.AnalysisResult) {
	if p.analyses != nil {
		if err := p.analyses.Save(ctx, result, p.ttl); err != nil {
			log.Error("analysis persistence failed", logging.Err(err))
		}
	}
	if p.clauses != nil && len(result.Clauses) > 0 {
		if err := p.clauses.IndexClauses(ctx, result.Clauses, p.ttl); err != nil {
			log.Error("clause indexing failed", logging.Err(err))
		}
	}
}
