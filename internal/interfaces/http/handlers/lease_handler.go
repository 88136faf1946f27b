package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Analyzer runs the clause analysis pipeline for one lease.
type Analyzer interface {
	Process(ctx context.Context, leaseID string, extracted []lease.ExtractedClause) (*lease.AnalysisResult, error)
}

// analyzeRequest is the POST body for lease analysis.
type analyzeRequest struct {
	Clauses []lease.ExtractedClause `json:"clauses"`
}

// LeaseHandler serves analysis submission and retrieval.
type LeaseHandler struct {
	pipeline Analyzer
	analyses lease.AnalysisRepository
	cache    *semcache.Cache
	logger   logging.Logger
}

// NewLeaseHandler wires a LeaseHandler. cache may be nil.
func NewLeaseHandler(pipeline Analyzer, analyses lease.AnalysisRepository, cache *semcache.Cache, logger logging.Logger) *LeaseHandler {
	return &LeaseHandler{
		pipeline: pipeline,
		analyses: analyses,
		cache:    cache,
		logger:   logger.Named("http.lease"),
	}
}

// Analyze handles POST /api/v1/leases/:id/analysis. Re-analyzing a lease
// replaces the stored result and drops that lease's cached answers.
func (h *LeaseHandler) Analyze(c *gin.Context) {
	leaseID := c.Param("id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid request body"))
		return
	}

	result, err := h.pipeline.Process(c.Request.Context(), leaseID, req.Clauses)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateLease(c.Request.Context(), leaseID, "lease re-analyzed")
	}

	respondOK(c, result)
}

// GetAnalysis handles GET /api/v1/leases/:id/analysis.
func (h *LeaseHandler) GetAnalysis(c *gin.Context) {
	leaseID := c.Param("id")

	result, err := h.analyses.Get(c.Request.Context(), leaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
