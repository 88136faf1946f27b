package analysis

import (
	"context"

	"github.com/leaselens/leaselens/internal/domain/catalog"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/ai"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
)

// Detection is a single detector verdict. Method records which pass produced
// the match.
type Detection struct {
	Pattern *catalog.Pattern
	Method  string // "regex" or "vector"
}

// Detector resolves a clause text to a violation pattern, or nil when the
// clause is treated as compliant.
//
// Two passes run in order: the regex pass walks the catalog most-severe
// first and wins on first match; the vector fallback embeds the clause and
// asks the exemplar index for its nearest neighbours, accepting the top hit
// only above the similarity threshold. Fallback failures degrade to
// "compliant" so a broken embedding endpoint can never abort document
// processing.
type Detector struct {
	catalog   *catalog.Catalog
	embedder  ai.Embedder
	exemplars lease.ExemplarIndex
	threshold float64
	topK      int
	logger    logging.Logger
	metrics   *prometheus.Collector
}

// NewDetector wires a Detector. exemplars may be nil, which disables the
// vector fallback entirely.
func NewDetector(
	cat *catalog.Catalog,
	embedder ai.Embedder,
	exemplars lease.ExemplarIndex,
	threshold float64,
	topK int,
	logger logging.Logger,
	metrics *prometheus.Collector,
) *Detector {
	return &Detector{
		catalog:   cat,
		embedder:  embedder,
		exemplars: exemplars,
		threshold: threshold,
		topK:      topK,
		logger:    logger.Named("detector"),
		metrics:   metrics,
	}
}

// Detect returns the matched pattern for clauseText, or nil when compliant.
func (d *Detector) Detect(ctx context.Context, clauseText string) *Detection {
	if p := d.catalog.MatchFirst(clauseText); p != nil {
		d.metrics.ViolationsDetected.WithLabelValues("regex", string(p.Severity)).Inc()
		return &Detection{Pattern: p, Method: "regex"}
	}
	return d.detectByVector(ctx, clauseText)
}

func (d *Detector) detectByVector(ctx context.Context, clauseText string) *Detection {
	if d.exemplars == nil || d.embedder == nil {
		return nil
	}

	vector, err := d.embedder.Embed(ctx, clauseText)
	if err != nil {
		// fail open to compliant
		d.logger.Warn("embedding failed during vector fallback", logging.Err(err))
		return nil
	}

	matches, err := d.exemplars.Nearest(ctx, vector, d.topK)
	if err != nil {
		d.logger.Warn("exemplar lookup failed during vector fallback", logging.Err(err))
		return nil
	}
	if len(matches) == 0 || matches[0].Similarity < d.threshold {
		return nil
	}

	top := matches[0]
	p := d.catalog.ByID(top.PatternID)
	if p == nil {
		d.logger.Warn("exemplar references unknown pattern",
			logging.String("pattern_id", top.PatternID))
		return nil
	}

	d.logger.Debug("vector fallback matched",
		logging.String("pattern_id", p.ID),
		logging.Float64("similarity", top.Similarity))
	d.metrics.ViolationsDetected.WithLabelValues("vector", string(p.Severity)).Inc()
	return &Detection{Pattern: p, Method: "vector"}
}
