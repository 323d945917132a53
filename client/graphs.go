package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GraphService handles graph, vertex, edge and traversal operations.
type GraphService struct {
	c *Client
}

func graphPath(graph string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/api/v1/graphs/")
	b.WriteString(url.PathEscape(graph))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// splitID splits a "collection/key" handle.
func splitID(id string) (collection, key string, err error) {
	collection, key, ok := strings.Cut(id, "/")
	if !ok || collection == "" || key == "" {
		return "", "", fmt.Errorf("invalid document handle %q", id)
	}
	return collection, key, nil
}

func dropParams(name string, drop bool) url.Values {
	if !drop {
		return nil
	}
	return url.Values{name: {"true"}}
}

type graphEnvelope struct {
	Graph *Graph `json:"graph"`
}

// List returns the names of all graphs.
func (s *GraphService) List(ctx context.Context) ([]string, error) {
	var resp struct {
		Graphs []string `json:"graphs"`
	}
	if err := s.c.get(ctx, "/api/v1/graphs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Graphs, nil
}

// Create defines a new graph.
func (s *GraphService) Create(ctx context.Context, req CreateGraphRequest) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.post(ctx, "/api/v1/graphs", req, &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// Get returns a graph definition.
func (s *GraphService) Get(ctx context.Context, graph string) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.get(ctx, graphPath(graph), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// Drop removes a graph, and its collections when dropCollections is set.
func (s *GraphService) Drop(ctx context.Context, graph string, dropCollections bool) error {
	return s.c.del(ctx, graphPath(graph), dropParams("dropCollections", dropCollections), nil)
}

// VertexCollections lists the vertex collections of a graph.
func (s *GraphService) VertexCollections(ctx context.Context, graph string) ([]string, error) {
	var resp struct {
		Collections []string `json:"collections"`
	}
	if err := s.c.get(ctx, graphPath(graph, "vertex"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// AddVertexCollection adds an orphan vertex collection.
func (s *GraphService) AddVertexCollection(ctx context.Context, graph, collection string) (*Graph, error) {
	var resp graphEnvelope
	body := map[string]string{"collection": collection}
	if err := s.c.post(ctx, graphPath(graph, "vertex"), body, &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// RemoveVertexCollection removes an orphan vertex collection.
func (s *GraphService) RemoveVertexCollection(ctx context.Context, graph, collection string, dropCollection bool) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.del(ctx, graphPath(graph, "vertex", collection), dropParams("dropCollection", dropCollection), &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// EdgeDefinitions lists the relations of a graph.
func (s *GraphService) EdgeDefinitions(ctx context.Context, graph string) ([]RelationDefinition, error) {
	var resp struct {
		EdgeDefinitions []RelationDefinition `json:"edgeDefinitions"`
	}
	if err := s.c.get(ctx, graphPath(graph, "edge"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.EdgeDefinitions, nil
}

// ExtendEdgeDefinitions adds a relation to a graph.
func (s *GraphService) ExtendEdgeDefinitions(ctx context.Context, graph string, rel RelationDefinition) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.post(ctx, graphPath(graph, "edge"), rel, &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// EditEdgeDefinition replaces the from and to sets of a relation.
func (s *GraphService) EditEdgeDefinition(ctx context.Context, graph string, rel RelationDefinition) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.put(ctx, graphPath(graph, "edge", rel.Collection), rel, &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

// DeleteEdgeDefinition removes a relation from a graph.
func (s *GraphService) DeleteEdgeDefinition(ctx context.Context, graph, collection string, dropCollection bool) (*Graph, error) {
	var resp graphEnvelope
	if err := s.c.del(ctx, graphPath(graph, "edge", collection), dropParams("dropCollection", dropCollection), &resp); err != nil {
		return nil, err
	}
	return resp.Graph, nil
}

type vertexEnvelope struct {
	Vertex Document `json:"vertex"`
}

type edgeEnvelope struct {
	Edge Document `json:"edge"`
}

// CreateVertex stores a vertex. props may carry a _key.
func (s *GraphService) CreateVertex(ctx context.Context, graph, collection string, props map[string]any) (Document, error) {
	var resp vertexEnvelope
	if err := s.c.post(ctx, graphPath(graph, "vertex", collection), props, &resp); err != nil {
		return nil, err
	}
	return resp.Vertex, nil
}

// ListVertices returns vertices of a collection whose properties match example.
// Example values are sent JSON-encoded so numbers and booleans keep their type.
func (s *GraphService) ListVertices(ctx context.Context, graph, collection string, example map[string]any, limit int) ([]Document, error) {
	params := url.Values{}
	for k, v := range example {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal example %s: %w", k, err)
		}
		params.Set(k, string(data))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Vertices []Document `json:"vertices"`
	}
	if err := s.c.get(ctx, graphPath(graph, "vertex", collection), params, &resp); err != nil {
		return nil, err
	}
	return resp.Vertices, nil
}

// GetVertex loads a vertex by handle.
func (s *GraphService) GetVertex(ctx context.Context, graph, id string) (Document, error) {
	return s.vertexCall(ctx, s.c.get, graph, id)
}

// ReplaceVertex swaps the user properties of a vertex.
func (s *GraphService) ReplaceVertex(ctx context.Context, graph, id string, props map[string]any) (Document, error) {
	return s.vertexWrite(ctx, s.c.put, graph, id, props)
}

// UpdateVertex merges props into a vertex.
func (s *GraphService) UpdateVertex(ctx context.Context, graph, id string, props map[string]any) (Document, error) {
	return s.vertexWrite(ctx, s.c.patch, graph, id, props)
}

// RemoveVertex deletes a vertex and its edges. When only some edges could be removed
// it returns the partial result together with an *APIError carrying
// ErrNumEdgeRemovalFailed.
func (s *GraphService) RemoveVertex(ctx context.Context, graph, id string) (*RemovalResult, error) {
	coll, key, err := splitID(id)
	if err != nil {
		return nil, err
	}
	var resp RemovalResult
	if err := s.c.del(ctx, graphPath(graph, "vertex", coll, key), nil, &resp); err != nil {
		if ErrorNum(err) == ErrNumEdgeRemovalFailed {
			resp.Removed, resp.Vertex = true, id
			return &resp, err
		}
		return nil, err
	}
	return &resp, nil
}

// CreateEdge stores an edge from one vertex handle to another.
func (s *GraphService) CreateEdge(ctx context.Context, graph, collection, from, to string, props map[string]any) (Document, error) {
	body := make(map[string]any, len(props)+2)
	for k, v := range props {
		body[k] = v
	}
	body["_from"], body["_to"] = from, to

	var resp edgeEnvelope
	if err := s.c.post(ctx, graphPath(graph, "edge", collection, "docs"), body, &resp); err != nil {
		return nil, err
	}
	return resp.Edge, nil
}

// GetEdge loads an edge by handle.
func (s *GraphService) GetEdge(ctx context.Context, graph, id string) (Document, error) {
	coll, key, err := splitID(id)
	if err != nil {
		return nil, err
	}
	var resp edgeEnvelope
	if err := s.c.get(ctx, graphPath(graph, "edge", coll, key), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Edge, nil
}

// ReplaceEdge swaps the user properties of an edge. Endpoints are kept.
func (s *GraphService) ReplaceEdge(ctx context.Context, graph, id string, props map[string]any) (Document, error) {
	return s.edgeWrite(ctx, s.c.put, graph, id, props)
}

// UpdateEdge merges props into an edge.
func (s *GraphService) UpdateEdge(ctx context.Context, graph, id string, props map[string]any) (Document, error) {
	return s.edgeWrite(ctx, s.c.patch, graph, id, props)
}

// RemoveEdge deletes an edge.
func (s *GraphService) RemoveEdge(ctx context.Context, graph, id string) error {
	coll, key, err := splitID(id)
	if err != nil {
		return err
	}
	return s.c.del(ctx, graphPath(graph, "edge", coll, key), nil, nil)
}

// Traverse runs an edge traversal.
func (s *GraphService) Traverse(ctx context.Context, graph string, req TraversalRequest) (*TraversalResult, error) {
	var resp TraversalResult
	if err := s.c.post(ctx, graphPath(graph, "traversal"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type (
	readFunc  func(ctx context.Context, path string, params url.Values, result any) error
	writeFunc func(ctx context.Context, path string, body any, result any) error
)

func (s *GraphService) vertexCall(ctx context.Context, read readFunc, graph, id string) (Document, error) {
	coll, key, err := splitID(id)
	if err != nil {
		return nil, err
	}
	var resp vertexEnvelope
	if err := read(ctx, graphPath(graph, "vertex", coll, key), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Vertex, nil
}

func (s *GraphService) vertexWrite(ctx context.Context, write writeFunc, graph, id string, props map[string]any) (Document, error) {
	coll, key, err := splitID(id)
	if err != nil {
		return nil, err
	}
	var resp vertexEnvelope
	if err := write(ctx, graphPath(graph, "vertex", coll, key), props, &resp); err != nil {
		return nil, err
	}
	return resp.Vertex, nil
}

func (s *GraphService) edgeWrite(ctx context.Context, write writeFunc, graph, id string, props map[string]any) (Document, error) {
	coll, key, err := splitID(id)
	if err != nil {
		return nil, err
	}
	var resp edgeEnvelope
	if err := write(ctx, graphPath(graph, "edge", coll, key), props, &resp); err != nil {
		return nil, err
	}
	return resp.Edge, nil
}
