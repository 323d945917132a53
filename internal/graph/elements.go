package graph

import (
	"context"

	"github.com/persistorai/docgraph/internal/models"
)

// AddVertex stores a vertex in one of the graph's vertex collections.
func (g *Graph) AddVertex(ctx context.Context, collection string, props *models.PropertyMap) (*models.Vertex, error) {
	vc, err := g.VertexCollection(collection)
	if err != nil {
		return nil, err
	}
	return vc.Save(ctx, props)
}

// AddEdge stores an edge after checking that its relation allows the endpoints.
func (g *Graph) AddEdge(ctx context.Context, edgeCollection, fromID, toID string, props *models.PropertyMap) (*models.Edge, error) {
	ec, err := g.EdgeCollection(edgeCollection)
	if err != nil {
		return nil, err
	}
	return ec.Save(ctx, fromID, toID, props)
}

// Vertex loads a vertex by id.
func (g *Graph) Vertex(ctx context.Context, id string) (*models.Vertex, error) {
	vc, err := g.vertexCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return vc.Document(ctx, id)
}

// Edge loads an edge by id.
func (g *Graph) Edge(ctx context.Context, id string) (*models.Edge, error) {
	ec, err := g.edgeCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return ec.Document(ctx, id)
}

// Vertices lists vertices of a collection matching example.
func (g *Graph) Vertices(ctx context.Context, collection string, example *models.PropertyMap, limit int) ([]*models.Vertex, error) {
	vc, err := g.VertexCollection(collection)
	if err != nil {
		return nil, err
	}
	return vc.ByExample(ctx, example, limit)
}

// ReplaceVertex swaps the properties of a vertex.
func (g *Graph) ReplaceVertex(ctx context.Context, id string, props *models.PropertyMap) (*models.Vertex, error) {
	vc, err := g.vertexCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return vc.Replace(ctx, id, props)
}

// UpdateVertex merges props into a vertex.
func (g *Graph) UpdateVertex(ctx context.Context, id string, props *models.PropertyMap) (*models.Vertex, error) {
	vc, err := g.vertexCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return vc.Update(ctx, id, props)
}

// ReplaceEdge swaps the properties of an edge. Its endpoints never change.
func (g *Graph) ReplaceEdge(ctx context.Context, id string, props *models.PropertyMap) (*models.Edge, error) {
	ec, err := g.edgeCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return ec.Replace(ctx, id, props)
}

// UpdateEdge merges props into an edge.
func (g *Graph) UpdateEdge(ctx context.Context, id string, props *models.PropertyMap) (*models.Edge, error) {
	ec, err := g.edgeCollectionOf(id)
	if err != nil {
		return nil, err
	}
	return ec.Update(ctx, id, props)
}

// Save writes the in-memory properties of el back to the store. Together with
// SetProperty this is a read-modify-write; the last writer wins.
func (g *Graph) Save(ctx context.Context, el models.GraphElement) error {
	var err error
	switch el.(type) {
	case *models.Edge:
		_, err = g.ReplaceEdge(ctx, el.ID(), el.Properties())
	default:
		_, err = g.ReplaceVertex(ctx, el.ID(), el.Properties())
	}
	return err
}

// RemoveEdge deletes an edge of the graph.
func (g *Graph) RemoveEdge(ctx context.Context, id string) error {
	ec, err := g.edgeCollectionOf(id)
	if err != nil {
		return err
	}
	return ec.Remove(ctx, id)
}
