package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/models"
)

// TraversalHandler serves edge traversal queries.
type TraversalHandler struct {
	baseHandler
	svc TraversalService
}

// NewTraversalHandler creates a TraversalHandler with the given service and logger.
func NewTraversalHandler(svc TraversalService, log *logrus.Logger) *TraversalHandler {
	return &TraversalHandler{baseHandler: baseHandler{log: log}, svc: svc}
}

// Traverse handles POST /graphs/:graph/traversal.
func (h *TraversalHandler) Traverse(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	var req models.TraversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}
	if req.Limit < 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must not be negative")

		return
	}

	result, err := h.svc.Traverse(c.Request.Context(), p[0], req)
	if err != nil {
		h.respondGraphError(c, "traversal", err)

		return
	}

	c.JSON(http.StatusOK, result)
}
