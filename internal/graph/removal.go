package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

// RemoveVertex deletes a vertex and then every edge of the graph that references it.
//
// The cascade is not transactional. Incident edges are collected first, then the
// vertex is removed; if that fails nothing else is touched. Edges are then removed
// one by one and a failure does not restore the vertex or edges already removed:
// the result lists what was removed and what was left, and the error matches
// models.ErrEdgeRemovalFailed.
func (g *Graph) RemoveVertex(ctx context.Context, id string) (*models.RemovalResult, error) {
	vc, err := g.vertexCollectionOf(id)
	if err != nil {
		return nil, err
	}
	if _, err := vc.coll.Document(ctx, id); err != nil {
		return nil, err
	}

	edges, err := g.Edges(id).ToArray(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting edges of %s: %w", id, err)
	}

	removed, err := vc.coll.Remove(ctx, id)
	if err != nil {
		return nil, models.CannotDeleteVertex(id, err)
	}
	if !removed {
		return nil, models.CannotDeleteVertex(id, nil)
	}
	g.arena.forget(id)

	result := &models.RemovalResult{Vertex: id, RemovedEdges: []string{}}
	var errs []error
	for _, e := range edges {
		ec, err := g.EdgeCollection(e.Collection())
		if err == nil {
			err = ec.Remove(ctx, e.ID())
		}
		switch {
		case err == nil:
			result.RemovedEdges = append(result.RemovedEdges, e.ID())
		case isNotFound(err):
			// Removed concurrently; nothing left to clean up.
		default:
			result.FailedEdges = append(result.FailedEdges, e.ID())
			errs = append(errs, err)
			g.log.WithError(err).WithFields(logrus.Fields{"graph": g.name, "vertex": id, "edge": e.ID()}).
				Warn("failed to remove incident edge")
		}
	}

	metrics.CascadeEdgesRemoved.Add(float64(len(result.RemovedEdges)))

	g.log.WithFields(logrus.Fields{
		"graph":   g.name,
		"vertex":  id,
		"removed": len(result.RemovedEdges),
		"failed":  len(result.FailedEdges),
	}).Debug("vertex removed")

	if len(errs) > 0 {
		return result, models.EdgeRemovalFailed(id, len(errs), errors.Join(errs...))
	}
	return result, nil
}
