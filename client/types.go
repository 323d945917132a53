package client

// Document is a vertex or edge in its flat wire form. System attributes (_id, _key,
// _from, _to) sit next to the user properties.
type Document map[string]any

// ID returns the document handle.
func (d Document) ID() string { return d.str("_id") }

// Key returns the document key.
func (d Document) Key() string { return d.str("_key") }

// From returns the source handle of an edge.
func (d Document) From() string { return d.str("_from") }

// To returns the target handle of an edge.
func (d Document) To() string { return d.str("_to") }

func (d Document) str(k string) string {
	s, _ := d[k].(string)
	return s
}

// RelationDefinition binds an edge collection to the vertex collections its edges
// may start from and point to.
type RelationDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
}

// Graph describes a named graph.
type Graph struct {
	Name              string               `json:"name"`
	EdgeDefinitions   []RelationDefinition `json:"edgeDefinitions"`
	OrphanCollections []string             `json:"orphanCollections"`
	VertexCollections []string             `json:"vertexCollections"`
	EdgeCollections   []string             `json:"edgeCollections"`
}

// CreateGraphRequest is the payload for creating a graph.
type CreateGraphRequest struct {
	Name              string               `json:"name"`
	EdgeDefinitions   []RelationDefinition `json:"edgeDefinitions"`
	OrphanCollections []string             `json:"orphanCollections,omitempty"`
}

// RemovalResult lists what a cascading vertex removal touched.
type RemovalResult struct {
	Removed      bool     `json:"removed"`
	Vertex       string   `json:"vertex"`
	RemovedEdges []string `json:"removedEdges"`
	FailedEdges  []string `json:"failedEdges"`
}

// TraversalRequest is the payload for an edge traversal. Restrictions and Filters
// apply in order; each restriction is a list of edge collection names and each
// filter group is a list of examples of which an edge must match at least one.
type TraversalRequest struct {
	Direction     string             `json:"direction,omitempty"`
	StartVertices []string           `json:"startVertices,omitempty"`
	Restrictions  [][]string         `json:"restrictions,omitempty"`
	Filters       [][]map[string]any `json:"filters,omitempty"`
	Explain       bool               `json:"explain,omitempty"`
	Limit         int                `json:"limit,omitempty"`
}

// TraversalResult is the response of a traversal. Count is nil for explain requests.
type TraversalResult struct {
	Query    string         `json:"query"`
	BindVars map[string]any `json:"bindVars"`
	Count    *int64         `json:"count,omitempty"`
	Edges    []Document     `json:"edges,omitempty"`
	HasMore  bool           `json:"hasMore,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Store         string  `json:"store"`
	StoreDriver   string  `json:"store_driver"`
	SchemaVersion int     `json:"schema_version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
