package models

import (
	"fmt"
	"slices"
)

// GraphRecord is the persisted definition of a named graph.
type GraphRecord struct {
	Name              string               `json:"name"`
	EdgeDefinitions   []RelationDefinition `json:"edgeDefinitions"`
	OrphanCollections []string             `json:"orphanCollections"`
}

// GraphRecordFromDocument decodes a record stored in the graph metadata collection.
func GraphRecordFromDocument(doc *Document) (*GraphRecord, error) {
	var rec GraphRecord
	if err := doc.Properties.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding graph record %s: %w", doc.ID(), err)
	}
	if rec.Name == "" {
		rec.Name = doc.Key
	}
	if rec.OrphanCollections == nil {
		rec.OrphanCollections = []string{}
	}
	return &rec, nil
}

// Document converts the record into a document of the given metadata collection.
func (g *GraphRecord) Document(collection string) (*Document, error) {
	props, err := PropertiesFrom(g)
	if err != nil {
		return nil, err
	}
	return &Document{Collection: collection, Key: g.Name, Properties: props}, nil
}

// EdgeCollections returns the edge collection names in definition order.
func (g *GraphRecord) EdgeCollections() []string {
	out := make([]string, 0, len(g.EdgeDefinitions))
	for _, r := range g.EdgeDefinitions {
		out = append(out, r.Collection)
	}
	return out
}

// VertexCollections returns the union of every relation's from and to sets plus the
// orphan collections, sorted.
func (g *GraphRecord) VertexCollections() []string {
	var out []string
	for _, r := range g.EdgeDefinitions {
		out = append(out, r.From...)
		out = append(out, r.To...)
	}
	out = append(out, g.OrphanCollections...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Relation returns the relation of the named edge collection.
func (g *GraphRecord) Relation(collection string) (RelationDefinition, bool) {
	for _, r := range g.EdgeDefinitions {
		if r.Collection == collection {
			return r, true
		}
	}
	return RelationDefinition{}, false
}

// GraphSummary is the API view of a graph.
type GraphSummary struct {
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

// RemovalResult describes what a cascading vertex removal touched.
type RemovalResult struct {
	Vertex       string   `json:"vertex"`
	RemovedEdges []string `json:"removedEdges"`
	FailedEdges  []string `json:"failedEdges,omitempty"`
}
