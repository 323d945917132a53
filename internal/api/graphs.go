// Package api provides HTTP handlers for the docgraph server.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/models"
)

// GraphHandler serves graph definition endpoints.
type GraphHandler struct {
	baseHandler
	svc GraphService
}

// NewGraphHandler creates a GraphHandler with the given service and logger.
func NewGraphHandler(svc GraphService, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{baseHandler: baseHandler{log: log}, svc: svc}
}

// addVertexCollectionRequest is the body of POST /graphs/:graph/vertex.
type addVertexCollectionRequest struct {
	Collection string `json:"collection" binding:"required"`
}

// List handles GET /graphs.
func (h *GraphHandler) List(c *gin.Context) {
	names, err := h.svc.ListGraphs(c.Request.Context())
	if err != nil {
		h.respondGraphError(c, "graph.list", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graphs": names})
}

// Create handles POST /graphs.
func (h *GraphHandler) Create(c *gin.Context) {
	var req models.CreateGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	graph, err := h.svc.CreateGraph(c.Request.Context(), req)
	if err != nil {
		h.respondGraphError(c, "graph.create", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"graph": graph})
}

// Get handles GET /graphs/:graph.
func (h *GraphHandler) Get(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	graph, err := h.svc.GetGraph(c.Request.Context(), p[0])
	if err != nil {
		h.respondGraphError(c, "graph.get", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graph": graph})
}

// Drop handles DELETE /graphs/:graph.
func (h *GraphHandler) Drop(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	dropCollections := parseBool(c.Query("dropCollections"))
	if err := h.svc.DropGraph(c.Request.Context(), p[0], dropCollections); err != nil {
		h.respondGraphError(c, "graph.drop", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// VertexCollections handles GET /graphs/:graph/vertex.
func (h *GraphHandler) VertexCollections(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	graph, err := h.svc.GetGraph(c.Request.Context(), p[0])
	if err != nil {
		h.respondGraphError(c, "graph.vertex_collections", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": graph.VertexCollections})
}

// AddVertexCollection handles POST /graphs/:graph/vertex.
func (h *GraphHandler) AddVertexCollection(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	var req addVertexCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	graph, err := h.svc.AddVertexCollection(c.Request.Context(), p[0], req.Collection)
	if err != nil {
		h.respondGraphError(c, "graph.add_vertex_collection", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"graph": graph})
}

// RemoveVertexCollection handles DELETE /graphs/:graph/vertex/:collection.
func (h *GraphHandler) RemoveVertexCollection(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}

	graph, err := h.svc.RemoveVertexCollection(c.Request.Context(), p[0], p[1], parseBool(c.Query("dropCollection")))
	if err != nil {
		h.respondGraphError(c, "graph.remove_vertex_collection", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graph": graph})
}

// EdgeDefinitions handles GET /graphs/:graph/edge.
func (h *GraphHandler) EdgeDefinitions(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	graph, err := h.svc.GetGraph(c.Request.Context(), p[0])
	if err != nil {
		h.respondGraphError(c, "graph.edge_definitions", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": graph.EdgeCollections, "edgeDefinitions": graph.EdgeDefinitions})
}

// ExtendEdgeDefinitions handles POST /graphs/:graph/edge.
func (h *GraphHandler) ExtendEdgeDefinitions(c *gin.Context) {
	p, ok := pathParams(c, "graph")
	if !ok {
		return
	}

	var rel models.RelationDefinition
	if err := c.ShouldBindJSON(&rel); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	graph, err := h.svc.ExtendEdgeDefinitions(c.Request.Context(), p[0], rel)
	if err != nil {
		h.respondGraphError(c, "graph.extend_edge_definitions", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"graph": graph})
}

// EditEdgeDefinition handles PUT /graphs/:graph/edge/:collection. The path names
// the relation; a collection in the body must agree with it.
func (h *GraphHandler) EditEdgeDefinition(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}

	var rel models.RelationDefinition
	if err := c.ShouldBindJSON(&rel); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}
	if rel.Collection != "" && rel.Collection != p[1] {
		h.respondGraphError(c, "graph.edit_edge_definition",
			models.InvalidParameter("edge definition collection does not match the path"))

		return
	}
	rel.Collection = p[1]

	graph, err := h.svc.EditEdgeDefinition(c.Request.Context(), p[0], rel)
	if err != nil {
		h.respondGraphError(c, "graph.edit_edge_definition", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graph": graph})
}

// DeleteEdgeDefinition handles DELETE /graphs/:graph/edge/:collection.
func (h *GraphHandler) DeleteEdgeDefinition(c *gin.Context) {
	p, ok := pathParams(c, "graph", "collection")
	if !ok {
		return
	}

	graph, err := h.svc.DeleteEdgeDefinition(c.Request.Context(), p[0], p[1], parseBool(c.Query("dropCollection")))
	if err != nil {
		h.respondGraphError(c, "graph.delete_edge_definition", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"graph": graph})
}
