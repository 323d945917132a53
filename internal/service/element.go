package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/models"
)

// DefaultListLimit applies when a vertex listing asks for no limit.
const DefaultListLimit = 1000

// withGraph loads graphName and runs fn against it.
func (s *GraphService) withGraph(ctx context.Context, graphName string, fn func(*graph.Graph) error) error {
	g, err := s.registry.Get(ctx, graphName)
	if err != nil {
		return err
	}
	return fn(g)
}

// CreateVertex stores a vertex in one of the graph's vertex collections.
func (s *GraphService) CreateVertex(ctx context.Context, graphName, collection string, props *models.PropertyMap) (*models.Document, error) {
	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		v, err := g.AddVertex(ctx, collection, props)
		if err != nil {
			return err
		}
		doc = v.Document()
		return nil
	})
	observe("vertex.create", err)
	if err != nil {
		return nil, err
	}

	s.auditAsync("vertex.create", graphName, "vertex", doc.ID(), nil)

	return doc, nil
}

// GetVertex loads a vertex.
func (s *GraphService) GetVertex(ctx context.Context, graphName, id string) (*models.Document, error) {
	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		v, err := g.Vertex(ctx, id)
		if err != nil {
			return err
		}
		doc = v.Document()
		return nil
	})
	observe("vertex.get", err)
	return doc, err
}

// ListVertices returns vertices of a collection matching example.
func (s *GraphService) ListVertices(
	ctx context.Context, graphName, collection string, example *models.PropertyMap, limit int,
) ([]*models.Document, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var docs []*models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		vs, err := g.Vertices(ctx, collection, example, limit)
		if err != nil {
			return err
		}
		docs = make([]*models.Document, 0, len(vs))
		for _, v := range vs {
			docs = append(docs, v.Document())
		}
		return nil
	})
	observe("vertex.list", err)
	return docs, err
}

// ReplaceVertex swaps the properties of a vertex.
func (s *GraphService) ReplaceVertex(ctx context.Context, graphName, id string, props *models.PropertyMap) (*models.Document, error) {
	return s.writeVertex(ctx, "vertex.replace", graphName, id, props, (*graph.Graph).ReplaceVertex)
}

// UpdateVertex merges properties into a vertex.
func (s *GraphService) UpdateVertex(ctx context.Context, graphName, id string, props *models.PropertyMap) (*models.Document, error) {
	return s.writeVertex(ctx, "vertex.update", graphName, id, props, (*graph.Graph).UpdateVertex)
}

func (s *GraphService) writeVertex(
	ctx context.Context, op, graphName, id string, props *models.PropertyMap,
	write func(*graph.Graph, context.Context, string, *models.PropertyMap) (*models.Vertex, error),
) (*models.Document, error) {
	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		v, err := write(g, ctx, id, props)
		if err != nil {
			return err
		}
		doc = v.Document()
		return nil
	})
	observe(op, err)
	if err != nil {
		return nil, err
	}

	s.auditAsync(op, graphName, "vertex", id, map[string]any{"keys": props.UserProperties().Keys()})

	return doc, nil
}

// RemoveVertex deletes a vertex and every edge of the graph's edge collections that
// touches it. On a partial cascade the result lists the edges already removed and
// the error matches models.ErrEdgeRemovalFailed.
func (s *GraphService) RemoveVertex(ctx context.Context, graphName, id string) (*models.RemovalResult, error) {
	var result *models.RemovalResult
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		var err error
		result, err = g.RemoveVertex(ctx, id)
		return err
	})
	observe("vertex.remove", err)

	if result != nil && len(result.RemovedEdges) > 0 {
		s.log.WithFields(logrus.Fields{
			"graph":   graphName,
			"vertex":  id,
			"removed": len(result.RemovedEdges),
			"failed":  len(result.FailedEdges),
		}).Debug("vertex.remove cascade")
	}
	if err != nil {
		return result, err
	}

	s.auditAsync("vertex.remove", graphName, "vertex", id, map[string]any{"removedEdges": result.RemovedEdges})

	return result, nil
}

// CreateEdge stores an edge. props must carry _from and _to and may carry _key.
func (s *GraphService) CreateEdge(ctx context.Context, graphName, collection string, props *models.PropertyMap) (*models.Document, error) {
	from, to := stringProp(props, models.AttrFrom), stringProp(props, models.AttrTo)
	if from == "" || to == "" {
		err := models.InvalidParameter("_from and _to are required")
		observe("edge.create", err)
		return nil, err
	}

	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		e, err := g.AddEdge(ctx, collection, from, to, props)
		if err != nil {
			return err
		}
		doc = e.Document()
		return nil
	})
	observe("edge.create", err)
	if err != nil {
		return nil, err
	}

	s.auditAsync("edge.create", graphName, "edge", doc.ID(), map[string]any{"from": from, "to": to})

	return doc, nil
}

// GetEdge loads an edge.
func (s *GraphService) GetEdge(ctx context.Context, graphName, id string) (*models.Document, error) {
	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		e, err := g.Edge(ctx, id)
		if err != nil {
			return err
		}
		doc = e.Document()
		return nil
	})
	observe("edge.get", err)
	return doc, err
}

// ReplaceEdge swaps the properties of an edge, keeping its endpoints.
func (s *GraphService) ReplaceEdge(ctx context.Context, graphName, id string, props *models.PropertyMap) (*models.Document, error) {
	return s.writeEdge(ctx, "edge.replace", graphName, id, props, (*graph.Graph).ReplaceEdge)
}

// UpdateEdge merges properties into an edge.
func (s *GraphService) UpdateEdge(ctx context.Context, graphName, id string, props *models.PropertyMap) (*models.Document, error) {
	return s.writeEdge(ctx, "edge.update", graphName, id, props, (*graph.Graph).UpdateEdge)
}

func (s *GraphService) writeEdge(
	ctx context.Context, op, graphName, id string, props *models.PropertyMap,
	write func(*graph.Graph, context.Context, string, *models.PropertyMap) (*models.Edge, error),
) (*models.Document, error) {
	var doc *models.Document
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		e, err := write(g, ctx, id, props)
		if err != nil {
			return err
		}
		doc = e.Document()
		return nil
	})
	observe(op, err)
	if err != nil {
		return nil, err
	}

	s.auditAsync(op, graphName, "edge", id, map[string]any{"keys": props.UserProperties().Keys()})

	return doc, nil
}

// RemoveEdge deletes an edge.
func (s *GraphService) RemoveEdge(ctx context.Context, graphName, id string) error {
	err := s.withGraph(ctx, graphName, func(g *graph.Graph) error {
		return g.RemoveEdge(ctx, id)
	})
	observe("edge.remove", err)
	if err != nil {
		return err
	}

	s.auditAsync("edge.remove", graphName, "edge", id, nil)

	return nil
}

// stringProp returns props[key] when it is a string.
func stringProp(props *models.PropertyMap, key string) string {
	v, ok := props.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
