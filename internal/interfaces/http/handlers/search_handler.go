package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/internal/application/search"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Searcher runs one enhanced clause search.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// searchResponse wraps results with their count so empty result sets are
// unambiguous on the wire.
type searchResponse struct {
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
}

// SearchHandler serves POST /api/v1/search.
type SearchHandler struct {
	engine Searcher
	logger logging.Logger
}

func NewSearchHandler(engine Searcher, logger logging.Logger) *SearchHandler {
	return &SearchHandler{engine: engine, logger: logger.Named("http.search")}
}

// Search parses a search.Query from the body and returns ranked results.
func (h *SearchHandler) Search(c *gin.Context) {
	var q search.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid request body"))
		return
	}

	results, err := h.engine.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, searchResponse{Results: results, Total: len(results)})
}
