// Package service provides business logic between API handlers and the graph core.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

// Compile-time checks: *GraphService must satisfy the service interfaces.
var (
	_ domain.GraphService     = (*GraphService)(nil)
	_ domain.ElementService   = (*GraphService)(nil)
	_ domain.TraversalService = (*GraphService)(nil)
)

// GraphService exposes a graph.Registry to the API, recording metrics and audit
// entries for every mutation.
type GraphService struct {
	registry    *graph.Registry
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewGraphService creates a GraphService. auditWorker may be nil.
func NewGraphService(registry *graph.Registry, auditWorker AuditEnqueuer, log *logrus.Logger) *GraphService {
	return &GraphService{registry: registry, auditWorker: auditWorker, log: log}
}

// observe counts an operation by outcome.
func observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.GraphOperations.WithLabelValues(op, status).Inc()
}

// auditAsync enqueues an audit entry via the AuditWorker (best-effort, non-blocking).
func (s *GraphService) auditAsync(action, graphName, entityType, entityID string, detail map[string]any) {
	if s.auditWorker == nil {
		return
	}
	s.auditWorker.Enqueue(&models.AuditEntry{
		Action:     action,
		Graph:      graphName,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
}

// ListGraphs returns the names of all graphs.
func (s *GraphService) ListGraphs(ctx context.Context) ([]string, error) {
	names, err := s.registry.List(ctx)
	observe("graph.list", err)
	return names, err
}

// CreateGraph defines a new graph.
func (s *GraphService) CreateGraph(ctx context.Context, req models.CreateGraphRequest) (*models.GraphSummary, error) {
	g, err := s.registry.Create(ctx, req.Name, req.EdgeDefinitions, req.OrphanCollections...)
	observe("graph.create", err)
	if err != nil {
		return nil, err
	}

	s.auditAsync("graph.create", g.Name(), "graph", g.Name(), map[string]any{
		"edgeCollections":   g.EdgeCollectionNames(),
		"orphanCollections": g.OrphanCollections(),
	})

	return g.Summary(), nil
}

// GetGraph returns a graph definition.
func (s *GraphService) GetGraph(ctx context.Context, name string) (*models.GraphSummary, error) {
	g, err := s.registry.Get(ctx, name)
	observe("graph.get", err)
	if err != nil {
		return nil, err
	}
	return g.Summary(), nil
}

// DropGraph removes a graph definition and optionally its unshared collections.
func (s *GraphService) DropGraph(ctx context.Context, name string, dropCollections bool) error {
	err := s.registry.Drop(ctx, name, dropCollections)
	observe("graph.drop", err)
	if err != nil {
		return err
	}

	s.auditAsync("graph.drop", name, "graph", name, map[string]any{"dropCollections": dropCollections})

	return nil
}

// AddVertexCollection adds an orphan collection to a graph.
func (s *GraphService) AddVertexCollection(ctx context.Context, graphName, collection string) (*models.GraphSummary, error) {
	return s.modify(ctx, "graph.add_vertex_collection", graphName, "collection", collection, nil,
		func(g *graph.Graph) error { return g.AddVertexCollection(ctx, collection) })
}

// RemoveVertexCollection removes an orphan collection from a graph.
func (s *GraphService) RemoveVertexCollection(ctx context.Context, graphName, collection string, dropCollection bool) (*models.GraphSummary, error) {
	return s.modify(ctx, "graph.remove_vertex_collection", graphName, "collection", collection,
		map[string]any{"dropCollection": dropCollection},
		func(g *graph.Graph) error { return g.RemoveVertexCollection(ctx, collection, dropCollection) })
}

// ExtendEdgeDefinitions adds a relation to a graph.
func (s *GraphService) ExtendEdgeDefinitions(ctx context.Context, graphName string, rel models.RelationDefinition) (*models.GraphSummary, error) {
	return s.modify(ctx, "graph.extend_edge_definitions", graphName, "collection", rel.Collection,
		map[string]any{"from": rel.From, "to": rel.To},
		func(g *graph.Graph) error { return g.ExtendEdgeDefinitions(ctx, rel) })
}

// EditEdgeDefinition replaces the endpoints of a relation.
func (s *GraphService) EditEdgeDefinition(ctx context.Context, graphName string, rel models.RelationDefinition) (*models.GraphSummary, error) {
	return s.modify(ctx, "graph.edit_edge_definition", graphName, "collection", rel.Collection,
		map[string]any{"from": rel.From, "to": rel.To},
		func(g *graph.Graph) error { return g.EditEdgeDefinition(ctx, rel) })
}

// DeleteEdgeDefinition removes a relation from a graph.
func (s *GraphService) DeleteEdgeDefinition(ctx context.Context, graphName, collection string, dropCollection bool) (*models.GraphSummary, error) {
	return s.modify(ctx, "graph.delete_edge_definition", graphName, "collection", collection,
		map[string]any{"dropCollection": dropCollection},
		func(g *graph.Graph) error { return g.DeleteEdgeDefinition(ctx, collection, dropCollection) })
}

// modify loads a graph, applies change and returns the resulting definition.
func (s *GraphService) modify(
	ctx context.Context, op, graphName, entityType, entityID string, detail map[string]any, change func(*graph.Graph) error,
) (*models.GraphSummary, error) {
	g, err := s.registry.Get(ctx, graphName)
	if err == nil {
		err = change(g)
	}
	observe(op, err)
	if err != nil {
		return nil, err
	}

	s.auditAsync(op, graphName, entityType, entityID, detail)

	return g.Summary(), nil
}
