package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/httputil"
	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

// ElementHandler serves vertex and edge endpoints. Documents are addressed by
// collection and key in the path and by "collection/key" handles in the service.
type ElementHandler struct {
	baseHandler
	svc ElementService
}

// NewElementHandler creates an ElementHandler with the given service and logger.
func NewElementHandler(svc ElementService, log *logrus.Logger) *ElementHandler {
	return &ElementHandler{baseHandler: baseHandler{log: log}, svc: svc}
}

// removalResponse is the body of a cascading vertex delete.
type removalResponse struct {
	Removed      bool     `json:"removed"`
	Vertex       string   `json:"vertex"`
	RemovedEdges []string `json:"removedEdges"`
	FailedEdges  []string `json:"failedEdges"`
}

// partialRemovalResponse reports a cascade that stopped after removing some edges.
type partialRemovalResponse struct {
	httputil.ErrorResponse
	RemovedEdges []string `json:"removedEdges"`
	FailedEdges  []string `json:"failedEdges"`
}

// documentParams reads graph, collection and key and joins the latter two into a handle.
func documentParams(c *gin.Context) (graphName, id string, ok bool) {
	p, ok := pathParams(c, "graph", "collection", "key")
	if !ok {
		return "", "", false
	}
	return p[0], models.DocumentID(p[1], p[2]), true
}

// CreateVertex handles POST /graphs/:graph/vertex/:collection.
func (h *ElementHandler) CreateVertex(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}
	props, ok := bindProperties(c)
	if !ok {
		return
	}

	doc, err := h.svc.CreateVertex(c.Request.Context(), p[0], p[1], props)
	if err != nil {
		h.respondGraphError(c, "vertex.create", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"vertex": doc})
}

// ListVertices handles GET /graphs/:graph/vertex/:collection. Query parameters
// other than limit form the example to match.
func (h *ElementHandler) ListVertices(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}

	limit := parseLimit(c.Query("limit"), 0)
	docs, err := h.svc.ListVertices(c.Request.Context(), p[0], p[1], exampleFromQuery(c, "limit"), limit)
	if err != nil {
		h.respondGraphError(c, "vertex.list", err)

		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	c.JSON(http.StatusOK, gin.H{"vertices": docs, "count": len(docs)})
}

// GetVertex handles GET /graphs/:graph/vertex/:collection/:key.
func (h *ElementHandler) GetVertex(c *gin.Context) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}

	doc, err := h.svc.GetVertex(c.Request.Context(), graphName, id)
	if err != nil {
		h.respondGraphError(c, "vertex.get", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"vertex": doc})
}

// ReplaceVertex handles PUT /graphs/:graph/vertex/:collection/:key.
func (h *ElementHandler) ReplaceVertex(c *gin.Context) {
	h.writeVertex(c, "vertex.replace", h.svc.ReplaceVertex)
}

// UpdateVertex handles PATCH /graphs/:graph/vertex/:collection/:key.
func (h *ElementHandler) UpdateVertex(c *gin.Context) {
	h.writeVertex(c, "vertex.update", h.svc.UpdateVertex)
}

type writeFunc func(ctx context.Context, graph, id string, props *models.PropertyMap) (*models.Document, error)

func (h *ElementHandler) writeVertex(c *gin.Context, op string, write writeFunc) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}
	props, ok := bindProperties(c)
	if !ok {
		return
	}

	doc, err := write(c.Request.Context(), graphName, id, props)
	if err != nil {
		h.respondGraphError(c, op, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"vertex": doc})
}

// RemoveVertex handles DELETE /graphs/:graph/vertex/:collection/:key. The vertex
// goes first, then its edges. When some edges cannot be removed the response is a
// 500 that still lists which edges were removed and which were left.
func (h *ElementHandler) RemoveVertex(c *gin.Context) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}

	res, err := h.svc.RemoveVertex(c.Request.Context(), graphName, id)
	if err != nil {
		var ge *models.GraphError
		if res == nil || !errors.Is(err, models.ErrEdgeRemovalFailed) || !errors.As(err, &ge) {
			h.respondGraphError(c, "vertex.remove", err)

			return
		}

		h.log.WithError(err).WithFields(logrus.Fields{
			"vertex":  id,
			"removed": len(res.RemovedEdges),
			"failed":  len(res.FailedEdges),
		}).Warn("vertex removal incomplete")
		metrics.ErrorsTotal.WithLabelValues(ErrCodeInternalError).Inc()
		c.AbortWithStatusJSON(http.StatusInternalServerError, partialRemovalResponse{
			ErrorResponse: httputil.ErrorResponse{
				Error:        true,
				Code:         ErrCodeInternalError,
				ErrorNum:     ge.Num,
				ErrorMessage: ge.Error(),
				RequestID:    c.GetString("request_id"),
			},
			RemovedEdges: nonNil(res.RemovedEdges),
			FailedEdges:  nonNil(res.FailedEdges),
		})

		return
	}

	c.JSON(http.StatusOK, removalResponse{
		Removed:      true,
		Vertex:       res.Vertex,
		RemovedEdges: nonNil(res.RemovedEdges),
		FailedEdges:  nonNil(res.FailedEdges),
	})
}

// CreateEdge handles POST /graphs/:graph/edge/:collection/docs.
func (h *ElementHandler) CreateEdge(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}
	props, ok := bindProperties(c)
	if !ok {
		return
	}

	doc, err := h.svc.CreateEdge(c.Request.Context(), p[0], p[1], props)
	if err != nil {
		h.respondGraphError(c, "edge.create", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"edge": doc})
}

// GetEdge handles GET /graphs/:graph/edge/:collection/:key.
func (h *ElementHandler) GetEdge(c *gin.Context) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}

	doc, err := h.svc.GetEdge(c.Request.Context(), graphName, id)
	if err != nil {
		h.respondGraphError(c, "edge.get", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"edge": doc})
}

// ReplaceEdge handles PUT /graphs/:graph/edge/:collection/:key.
func (h *ElementHandler) ReplaceEdge(c *gin.Context) {
	h.writeEdge(c, "edge.replace", h.svc.ReplaceEdge)
}

// UpdateEdge handles PATCH /graphs/:graph/edge/:collection/:key.
func (h *ElementHandler) UpdateEdge(c *gin.Context) {
	h.writeEdge(c, "edge.update", h.svc.UpdateEdge)
}

func (h *ElementHandler) writeEdge(c *gin.Context, op string, write writeFunc) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}
	props, ok := bindProperties(c)
	if !ok {
		return
	}

	doc, err := write(c.Request.Context(), graphName, id, props)
	if err != nil {
		h.respondGraphError(c, op, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"edge": doc})
}

// RemoveEdge handles DELETE /graphs/:graph/edge/:collection/:key.
func (h *ElementHandler) RemoveEdge(c *gin.Context) {
	graphName, id, ok := documentParams(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveEdge(c.Request.Context(), graphName, id); err != nil {
		h.respondGraphError(c, "edge.remove", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true, "edge": id})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
