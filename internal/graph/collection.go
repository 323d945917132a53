package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// VertexCollection is a vertex collection seen through a graph. Removal through it
// cascades to incident edges.
type VertexCollection struct {
	g    *Graph
	coll domain.Collection
}

// VertexCollection returns the graph-bound handle of a vertex collection.
func (g *Graph) VertexCollection(name string) (*VertexCollection, error) {
	c, ok := g.vertexCollections[name]
	if !ok {
		return nil, models.VertexCollectionNotInGraph(name)
	}
	return &VertexCollection{g: g, coll: c}, nil
}

// Name returns the collection name.
func (vc *VertexCollection) Name() string { return vc.coll.Name() }

// Raw returns the underlying store collection. Writes through it are not checked and
// removals through it do not cascade.
func (vc *VertexCollection) Raw() domain.Collection { return vc.coll }

// Save stores a new vertex. props may carry a _key.
func (vc *VertexCollection) Save(ctx context.Context, props *models.PropertyMap) (*models.Vertex, error) {
	doc, err := vc.coll.Save(ctx, models.NewDocument(vc.coll.Name(), props))
	if err != nil {
		return nil, fmt.Errorf("saving vertex in %s: %w", vc.coll.Name(), err)
	}
	return vc.g.arena.vertex(doc), nil
}

// Document returns a vertex by id.
func (vc *VertexCollection) Document(ctx context.Context, id string) (*models.Vertex, error) {
	doc, err := vc.coll.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return vc.g.arena.vertex(doc), nil
}

// Replace swaps the properties of a vertex.
func (vc *VertexCollection) Replace(ctx context.Context, id string, props *models.PropertyMap) (*models.Vertex, error) {
	doc, err := vc.coll.Replace(ctx, id, props)
	if err != nil {
		return nil, err
	}
	return vc.g.arena.vertex(doc), nil
}

// Update merges props into a vertex.
func (vc *VertexCollection) Update(ctx context.Context, id string, props *models.PropertyMap) (*models.Vertex, error) {
	doc, err := vc.coll.Update(ctx, id, props)
	if err != nil {
		return nil, err
	}
	return vc.g.arena.vertex(doc), nil
}

// Remove deletes a vertex together with its incident edges.
func (vc *VertexCollection) Remove(ctx context.Context, id string) (*models.RemovalResult, error) {
	return vc.g.RemoveVertex(ctx, id)
}

// Count returns the number of vertices in the collection.
func (vc *VertexCollection) Count(ctx context.Context) (int64, error) {
	return vc.coll.Count(ctx)
}

// ByExample lists vertices whose properties match example.
func (vc *VertexCollection) ByExample(ctx context.Context, example *models.PropertyMap, limit int) ([]*models.Vertex, error) {
	docs, err := vc.coll.ByExample(ctx, example, limit)
	if err != nil {
		return nil, fmt.Errorf("listing vertices of %s: %w", vc.coll.Name(), err)
	}
	out := make([]*models.Vertex, 0, len(docs))
	for _, doc := range docs {
		out = append(out, vc.g.arena.vertex(doc))
	}
	return out, nil
}

// EdgeCollection is an edge collection seen through a graph. Saves through it are
// checked against the collection's relation.
type EdgeCollection struct {
	g    *Graph
	coll domain.Collection
}

// EdgeCollection returns the graph-bound handle of an edge collection.
func (g *Graph) EdgeCollection(name string) (*EdgeCollection, error) {
	c, ok := g.edgeCollections[name]
	if !ok {
		return nil, models.EdgeCollectionNotUsed(name)
	}
	return &EdgeCollection{g: g, coll: c}, nil
}

// Name returns the collection name.
func (ec *EdgeCollection) Name() string { return ec.coll.Name() }

// Raw returns the underlying store collection. Writes through it are not checked.
func (ec *EdgeCollection) Raw() domain.Collection { return ec.coll }

// Save stores a new edge from fromID to toID after checking the relation.
func (ec *EdgeCollection) Save(ctx context.Context, fromID, toID string, props *models.PropertyMap) (*models.Edge, error) {
	if err := CheckEdgeWrite(ec.g, ec.coll.Name(), fromID, toID); err != nil {
		return nil, err
	}
	doc := models.NewDocument(ec.coll.Name(), props)
	doc.From, doc.To = fromID, toID

	saved, err := ec.coll.Save(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("saving edge in %s: %w", ec.coll.Name(), err)
	}
	return ec.g.arena.edge(saved), nil
}

// Document returns an edge by id.
func (ec *EdgeCollection) Document(ctx context.Context, id string) (*models.Edge, error) {
	doc, err := ec.coll.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return ec.g.arena.edge(doc), nil
}

// Replace swaps the properties of an edge, keeping its endpoints.
func (ec *EdgeCollection) Replace(ctx context.Context, id string, props *models.PropertyMap) (*models.Edge, error) {
	doc, err := ec.coll.Replace(ctx, id, props)
	if err != nil {
		return nil, err
	}
	return ec.g.arena.edge(doc), nil
}

// Update merges props into an edge.
func (ec *EdgeCollection) Update(ctx context.Context, id string, props *models.PropertyMap) (*models.Edge, error) {
	doc, err := ec.coll.Update(ctx, id, props)
	if err != nil {
		return nil, err
	}
	return ec.g.arena.edge(doc), nil
}

// Remove deletes an edge.
func (ec *EdgeCollection) Remove(ctx context.Context, id string) error {
	removed, err := ec.coll.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("removing edge %s: %w", id, err)
	}
	if !removed {
		return models.DocumentNotFound(id)
	}
	ec.g.arena.forget(id)
	return nil
}

// Count returns the number of edges in the collection.
func (ec *EdgeCollection) Count(ctx context.Context) (int64, error) {
	return ec.coll.Count(ctx)
}

// vertexCollectionOf returns the graph-bound collection an id belongs to.
func (g *Graph) vertexCollectionOf(id string) (*VertexCollection, error) {
	collection, _, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	return g.VertexCollection(collection)
}

// edgeCollectionOf returns the graph-bound collection an id belongs to.
func (g *Graph) edgeCollectionOf(id string) (*EdgeCollection, error) {
	collection, _, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	return g.EdgeCollection(collection)
}

// isNotFound reports whether err means the document does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, models.ErrDocumentNotFound)
}
