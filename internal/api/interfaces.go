package api

import (
	"context"

	"github.com/persistorai/docgraph/internal/domain"
)

// GraphService is the graph definition service used by GraphHandler.
type GraphService = domain.GraphService

// ElementService is the vertex and edge service used by ElementHandler.
type ElementService = domain.ElementService

// TraversalService is the traversal service used by TraversalHandler.
type TraversalService = domain.TraversalService

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
