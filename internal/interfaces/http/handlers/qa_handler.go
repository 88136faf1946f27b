package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/internal/application/qa"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Answerer resolves one question about an analyzed lease.
type Answerer interface {
	Ask(ctx context.Context, leaseID, userID, question string) (*qa.Answer, error)
	History(ctx context.Context, leaseID, userID string) (*lease.Conversation, error)
}

// questionRequest is the POST body for asking a question.
type questionRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

// QAHandler serves the question-answering endpoints.
type QAHandler struct {
	orchestrator Answerer
	logger       logging.Logger
}

func NewQAHandler(orchestrator Answerer, logger logging.Logger) *QAHandler {
	return &QAHandler{orchestrator: orchestrator, logger: logger.Named("http.qa")}
}

// Ask handles POST /api/v1/leases/:id/questions.
func (h *QAHandler) Ask(c *gin.Context) {
	leaseID := c.Param("id")

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid request body"))
		return
	}

	answer, err := h.orchestrator.Ask(c.Request.Context(), leaseID, req.UserID, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, answer)
}

// History handles GET /api/v1/leases/:id/conversation?userId=...
func (h *QAHandler) History(c *gin.Context) {
	leaseID := c.Param("id")
	userID := c.Query("userId")

	conv, err := h.orchestrator.History(c.Request.Context(), leaseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, conv)
}
