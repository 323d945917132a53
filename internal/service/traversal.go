package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/models"
)

// Traversal result limits.
const (
	DefaultTraversalLimit = 1000
	MaxTraversalLimit     = 10000
)

// Traverse builds an edge query from req. With Explain set only the query text and
// bind variables are returned; otherwise the query is counted and up to Limit edges
// are read through a lazy cursor.
func (s *GraphService) Traverse(ctx context.Context, graphName string, req models.TraversalRequest) (*models.TraversalResult, error) {
	result, err := s.traverse(ctx, graphName, req)
	observe("traversal", err)
	return result, err
}

func (s *GraphService) traverse(ctx context.Context, graphName string, req models.TraversalRequest) (*models.TraversalResult, error) {
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}

	g, err := s.registry.Get(ctx, graphName)
	if err != nil {
		return nil, err
	}

	q, err := buildQuery(g, direction, req)
	if err != nil {
		return nil, err
	}

	result := &models.TraversalResult{Query: q.PrintQuery(), BindVars: q.BindVars()}
	if req.Explain {
		return result, nil
	}

	count, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}
	result.Count = &count

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultTraversalLimit
	}
	limit = min(limit, MaxTraversalLimit)

	edges, hasMore, err := readEdges(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	result.Edges = edges
	result.HasMore = hasMore

	s.log.WithFields(logrus.Fields{
		"graph":     graphName,
		"direction": direction.String(),
		"count":     count,
		"returned":  len(edges),
	}).Debug("traversal")

	return result, nil
}

// buildQuery applies every restriction and filter group of req in order.
func buildQuery(g *graph.Graph, direction models.Direction, req models.TraversalRequest) (*graph.Query, error) {
	q := g.Traverse(direction, req.StartVertices...)
	for _, r := range req.Restrictions {
		if _, err := q.Restrict(r...); err != nil {
			return nil, err
		}
	}
	for _, group := range req.Filters {
		q.Filter(group...)
	}
	return q, nil
}

// readEdges iterates up to limit edges and reports whether more remain. The cursor
// is always closed.
func readEdges(ctx context.Context, q *graph.Query, limit int) (_ []*models.Document, _ bool, err error) {
	defer func() {
		if cerr := q.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	edges := make([]*models.Document, 0, min(limit, 64))
	for len(edges) < limit {
		e, err := q.Next(ctx)
		if errors.Is(err, models.ErrCursorExhausted) {
			return edges, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		edges = append(edges, e.Document())
	}

	more, err := q.HasNext(ctx)
	if err != nil {
		return nil, false, err
	}

	return edges, more, nil
}
