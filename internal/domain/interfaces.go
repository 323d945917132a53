// Package domain defines the interfaces shared across layers: the document store the
// graph core runs on, and the services the API depends on. Consumers should depend on
// these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"
	"time"

	"github.com/persistorai/docgraph/internal/models"
)

// DocumentStore is the storage engine underneath the graph core. It knows nothing about
// graphs: relations are enforced above it, so writes made directly through a Collection
// are never checked.
type DocumentStore interface {
	// Collection returns the named collection or an error matching models.ErrCollectionNotFound.
	Collection(ctx context.Context, name string) (Collection, error)
	// CreateCollection fails with models.ErrDuplicateName when the name is taken.
	CreateCollection(ctx context.Context, name string, typ models.CollectionType) (Collection, error)
	DropCollection(ctx context.Context, name string) error
	// Execute opens a server-side cursor over the edges selected by stmt.
	Execute(ctx context.Context, stmt models.Statement, batchSize int) (ServerCursor, error)
	// Count returns the number of edges selected by stmt without opening a cursor.
	Count(ctx context.Context, stmt models.Statement) (int64, error)
	Ping(ctx context.Context) error
}

// Collection is a handle to one named collection. Handles hold no data and may be
// shared freely.
type Collection interface {
	Name() string
	Type() models.CollectionType
	// Save stores doc and returns the stored copy. A key is generated when doc.Key is empty.
	Save(ctx context.Context, doc *models.Document) (*models.Document, error)
	Document(ctx context.Context, id string) (*models.Document, error)
	// Replace swaps the user properties of a document, keeping its key and endpoints.
	Replace(ctx context.Context, id string, props *models.PropertyMap) (*models.Document, error)
	// Update merges props into the stored user properties.
	Update(ctx context.Context, id string, props *models.PropertyMap) (*models.Document, error)
	// Remove reports false when no such document exists.
	Remove(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	// ByExample returns documents matching example in key order. limit <= 0 means no limit.
	ByExample(ctx context.Context, example *models.PropertyMap, limit int) ([]*models.Document, error)
}

// ServerCursor is an open query execution.
type ServerCursor interface {
	// Fetch returns up to max documents; an empty batch means the execution is drained.
	Fetch(ctx context.Context, max int) ([]*models.Document, error)
	Dispose(ctx context.Context) error
}

// Purger deletes documents of a collection whose timestamp property field is older
// than cutoff. Stores implement it so audit retention can be enforced.
type Purger interface {
	PurgeBefore(ctx context.Context, collection, field string, cutoff time.Time) (int, error)
}

// Auditor records graph mutations.
type Auditor interface {
	RecordAudit(ctx context.Context, entry *models.AuditEntry) error
}

// GraphService defines graph definition management.
type GraphService interface {
	ListGraphs(ctx context.Context) ([]string, error)
	CreateGraph(ctx context.Context, req models.CreateGraphRequest) (*models.GraphSummary, error)
	GetGraph(ctx context.Context, name string) (*models.GraphSummary, error)
	DropGraph(ctx context.Context, name string, dropCollections bool) error
	AddVertexCollection(ctx context.Context, graph, collection string) (*models.GraphSummary, error)
	RemoveVertexCollection(ctx context.Context, graph, collection string, dropCollection bool) (*models.GraphSummary, error)
	ExtendEdgeDefinitions(ctx context.Context, graph string, rel models.RelationDefinition) (*models.GraphSummary, error)
	EditEdgeDefinition(ctx context.Context, graph string, rel models.RelationDefinition) (*models.GraphSummary, error)
	DeleteEdgeDefinition(ctx context.Context, graph, collection string, dropCollection bool) (*models.GraphSummary, error)
}

// ElementService defines vertex and edge operations within a graph.
type ElementService interface {
	CreateVertex(ctx context.Context, graph, collection string, props *models.PropertyMap) (*models.Document, error)
	GetVertex(ctx context.Context, graph, id string) (*models.Document, error)
	ListVertices(ctx context.Context, graph, collection string, example *models.PropertyMap, limit int) ([]*models.Document, error)
	ReplaceVertex(ctx context.Context, graph, id string, props *models.PropertyMap) (*models.Document, error)
	UpdateVertex(ctx context.Context, graph, id string, props *models.PropertyMap) (*models.Document, error)
	RemoveVertex(ctx context.Context, graph, id string) (*models.RemovalResult, error)
	CreateEdge(ctx context.Context, graph, collection string, props *models.PropertyMap) (*models.Document, error)
	GetEdge(ctx context.Context, graph, id string) (*models.Document, error)
	ReplaceEdge(ctx context.Context, graph, id string, props *models.PropertyMap) (*models.Document, error)
	UpdateEdge(ctx context.Context, graph, id string, props *models.PropertyMap) (*models.Document, error)
	RemoveEdge(ctx context.Context, graph, id string) error
}

// TraversalService defines edge traversal queries.
type TraversalService interface {
	Traverse(ctx context.Context, graph string, req models.TraversalRequest) (*models.TraversalResult, error)
}
