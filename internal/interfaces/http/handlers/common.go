// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/pkg/errors"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an error to its HTTP status and serializes the envelope.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	resp := errorResponse{Code: string(code), Message: "internal server error"}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}

	c.AbortWithStatusJSON(code.HTTPStatus(), resp)
	_ = c.Error(err)
}

func respondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}
