package graph

import (
	"slices"

	"github.com/persistorai/docgraph/internal/models"
)

// CheckEdgeWrite verifies that g allows an edge from fromID to toID in edgeCollection.
func CheckEdgeWrite(g *Graph, edgeCollection, fromID, toID string) error {
	rel, ok := g.Relation(edgeCollection)
	if !ok {
		return models.EdgeCollectionNotUsed(edgeCollection)
	}
	if !rel.AllowsFrom(models.CollectionOf(fromID)) || !rel.AllowsTo(models.CollectionOf(toID)) {
		return models.InvalidRelation(fromID, toID)
	}
	return nil
}

// CheckRestriction verifies that every name is an edge collection of g. The error
// lists the unknown names in the order given.
func CheckRestriction(g *Graph, names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := g.edgeCollections[name]; !ok && !slices.Contains(unknown, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return models.BadRestriction(unknown)
	}
	return nil
}
