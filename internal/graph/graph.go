package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// Graph is a resolved graph definition bound to its collections. A Graph is meant to
// be used by one caller at a time.
type Graph struct {
	registry *Registry
	store    domain.DocumentStore
	log      *logrus.Logger
	arena    *arena

	name      string
	relations []models.RelationDefinition
	orphans   []string

	// Derived from relations and orphans by load; never edited directly.
	vertexCollections map[string]domain.Collection
	edgeCollections   map[string]domain.Collection
}

// resolve looks up every collection rec refers to, provisioning missing ones.
func (r *Registry) resolve(ctx context.Context, rec *models.GraphRecord) (vertices, edges map[string]domain.Collection, err error) {
	vertices = make(map[string]domain.Collection)
	edges = make(map[string]domain.Collection)

	for _, rel := range rec.EdgeDefinitions {
		c, err := r.ensureCollection(ctx, rel.Collection, models.CollectionTypeEdge)
		if err != nil {
			return nil, nil, err
		}
		edges[rel.Collection] = c
	}
	for _, name := range rec.VertexCollections() {
		c, err := r.ensureCollection(ctx, name, models.CollectionTypeDocument)
		if err != nil {
			return nil, nil, err
		}
		vertices[name] = c
	}

	return vertices, edges, nil
}

// load resolves rec and makes it the definition of g.
func (g *Graph) load(ctx context.Context, rec *models.GraphRecord) error {
	vertices, edges, err := g.registry.resolve(ctx, rec)
	if err != nil {
		return err
	}
	g.set(rec, vertices, edges)
	return nil
}

func (g *Graph) set(rec *models.GraphRecord, vertices, edges map[string]domain.Collection) {
	g.name = rec.Name
	g.relations = slices.Clone(rec.EdgeDefinitions)
	g.orphans = slices.Clone(rec.OrphanCollections)
	g.vertexCollections = vertices
	g.edgeCollections = edges
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Relations returns the relations in definition order.
func (g *Graph) Relations() []models.RelationDefinition {
	return slices.Clone(g.relations)
}

// OrphanCollections returns the vertex collections no relation references.
func (g *Graph) OrphanCollections() []string {
	return slices.Clone(g.orphans)
}

// VertexCollectionNames returns all vertex collections of the graph, sorted.
func (g *Graph) VertexCollectionNames() []string {
	out := make([]string, 0, len(g.vertexCollections))
	for name := range g.vertexCollections {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// EdgeCollectionNames returns the edge collections in definition order.
func (g *Graph) EdgeCollectionNames() []string {
	out := make([]string, 0, len(g.relations))
	for _, rel := range g.relations {
		out = append(out, rel.Collection)
	}
	return out
}

// Relation returns the relation of an edge collection.
func (g *Graph) Relation(edgeCollection string) (models.RelationDefinition, bool) {
	for _, rel := range g.relations {
		if rel.Collection == edgeCollection {
			return rel, true
		}
	}
	return models.RelationDefinition{}, false
}

// Record returns the persisted form of the graph.
func (g *Graph) Record() *models.GraphRecord {
	return &models.GraphRecord{
		Name:              g.name,
		EdgeDefinitions:   g.Relations(),
		OrphanCollections: g.OrphanCollections(),
	}
}

// Summary returns the API view of the graph.
func (g *Graph) Summary() *models.GraphSummary {
	return &models.GraphSummary{
		Name:              g.name,
		EdgeDefinitions:   g.Relations(),
		OrphanCollections: g.OrphanCollections(),
		VertexCollections: g.VertexCollectionNames(),
		EdgeCollections:   g.EdgeCollectionNames(),
	}
}

func (g *Graph) String() string {
	parts := make([]string, 0, len(g.relations))
	for _, rel := range g.relations {
		parts = append(parts, rel.String())
	}
	return fmt.Sprintf("[Graph %q EdgeDefinitions: [%s] VertexCollections: [%s]]",
		g.name, strings.Join(parts, "; "), strings.Join(g.VertexCollectionNames(), ", "))
}

// apply resolves rec, persists it and makes it the definition of g. Nothing is
// persisted when a collection cannot be resolved.
func (g *Graph) apply(ctx context.Context, rec *models.GraphRecord) error {
	vertices, edges, err := g.registry.resolve(ctx, rec)
	if err != nil {
		return err
	}
	if err := g.registry.saveRecord(ctx, rec); err != nil {
		return err
	}
	g.set(rec, vertices, edges)
	return nil
}

// otherRecords returns the definitions of every other registered graph.
func (g *Graph) otherRecords(ctx context.Context) ([]*models.GraphRecord, error) {
	recs, err := g.registry.records(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(recs, func(rec *models.GraphRecord) bool { return rec.Name == g.name }), nil
}

// ExtendEdgeDefinitions adds a relation to the graph. Orphan collections the relation
// references stop being orphans.
func (g *Graph) ExtendEdgeDefinitions(ctx context.Context, rel models.RelationDefinition) error {
	rel, err := models.NewRelation(rel.Collection, rel.From, rel.To)
	if err != nil {
		return err
	}
	if _, exists := g.Relation(rel.Collection); exists {
		return &models.GraphError{
			Num:     models.ErrNumCollectionMultiUse,
			Message: fmt.Sprintf("multi use of edge collection in edge def: %s", rel.Collection),
		}
	}
	if _, isVertex := g.vertexCollections[rel.Collection]; isVertex {
		return models.WrongCollectionType(rel.Collection, models.CollectionTypeEdge)
	}
	for _, v := range rel.VertexCollections() {
		if _, isEdge := g.edgeCollections[v]; isEdge || v == rel.Collection {
			return models.WrongCollectionType(v, models.CollectionTypeDocument)
		}
	}

	others, err := g.otherRecords(ctx)
	if err != nil {
		return err
	}
	for _, other := range others {
		if err := checkSharedRelations([]models.RelationDefinition{rel}, other); err != nil {
			return err
		}
	}

	rec := g.Record()
	rec.EdgeDefinitions = append(rec.EdgeDefinitions, rel)
	rec.OrphanCollections = unreferenced(rec.OrphanCollections, rec.EdgeDefinitions)

	if err := g.apply(ctx, rec); err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{"graph": g.name, "edgeCollection": rel.Collection}).Info("edge definition added")

	return nil
}

// EditEdgeDefinition replaces the from and to sets of an existing relation. The change
// is applied to every graph that uses the same edge collection. Vertex collections
// that are no longer referenced become orphans.
func (g *Graph) EditEdgeDefinition(ctx context.Context, rel models.RelationDefinition) error {
	rel, err := models.NewRelation(rel.Collection, rel.From, rel.To)
	if err != nil {
		return err
	}
	if _, exists := g.Relation(rel.Collection); !exists {
		return models.EdgeCollectionNotUsed(rel.Collection)
	}
	for _, v := range rel.VertexCollections() {
		if _, isEdge := g.edgeCollections[v]; isEdge {
			return models.WrongCollectionType(v, models.CollectionTypeDocument)
		}
	}

	others, err := g.otherRecords(ctx)
	if err != nil {
		return err
	}
	if err := g.apply(ctx, replaceRelation(g.Record(), rel)); err != nil {
		return err
	}
	for _, other := range others {
		if _, shared := other.Relation(rel.Collection); !shared {
			continue
		}
		if err := g.registry.saveRecord(ctx, replaceRelation(other, rel)); err != nil {
			return fmt.Errorf("propagating edge definition %s to graph %s: %w", rel.Collection, other.Name, err)
		}
	}

	g.log.WithFields(logrus.Fields{"graph": g.name, "edgeCollection": rel.Collection}).Info("edge definition changed")

	return nil
}

// DeleteEdgeDefinition removes a relation from the graph. Vertex collections it alone
// referenced become orphans. With dropCollection the edge collection is dropped too,
// unless another graph still uses it. The last relation of a graph cannot be removed.
func (g *Graph) DeleteEdgeDefinition(ctx context.Context, edgeCollection string, dropCollection bool) error {
	if _, exists := g.Relation(edgeCollection); !exists {
		return models.EdgeCollectionNotUsed(edgeCollection)
	}
	if len(g.relations) == 1 {
		return models.NoEdgeDefinitions(g.name)
	}

	rec := g.Record()
	previous := rec.VertexCollections()
	rec.EdgeDefinitions = slices.DeleteFunc(rec.EdgeDefinitions, func(r models.RelationDefinition) bool {
		return r.Collection == edgeCollection
	})
	rec.OrphanCollections = append(rec.OrphanCollections, dropped(previous, rec)...)

	if err := g.apply(ctx, rec); err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{"graph": g.name, "edgeCollection": edgeCollection}).Info("edge definition removed")

	if dropCollection {
		return g.dropIfUnused(ctx, edgeCollection)
	}
	return nil
}

// AddVertexCollection adds an orphan vertex collection, creating it when missing.
func (g *Graph) AddVertexCollection(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.InvalidName("vertex collection name")
	}
	if _, isEdge := g.edgeCollections[name]; isEdge {
		return models.WrongCollectionType(name, models.CollectionTypeDocument)
	}
	if referencedByRelations(name, g.relations) {
		return &models.GraphError{
			Num:     models.ErrNumCollectionUsedInEdgeDefinition,
			Message: fmt.Sprintf("collection '%s' is already used in an edge definition", name),
		}
	}
	if slices.Contains(g.orphans, name) {
		return &models.GraphError{
			Num:     models.ErrNumCollectionUsedInOrphans,
			Message: fmt.Sprintf("collection '%s' is already an orphan collection", name),
		}
	}

	rec := g.Record()
	rec.OrphanCollections = append(rec.OrphanCollections, name)
	if err := g.apply(ctx, rec); err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{"graph": g.name, "collection": name}).Info("vertex collection added")

	return nil
}

// RemoveVertexCollection removes an orphan vertex collection from the graph. With
// dropCollection the collection is dropped too, unless another graph still uses it.
func (g *Graph) RemoveVertexCollection(ctx context.Context, name string, dropCollection bool) error {
	if !slices.Contains(g.orphans, name) {
		return &models.GraphError{
			Num:     models.ErrNumNotInOrphanCollection,
			Message: fmt.Sprintf("collection '%s' is not an orphan collection of graph '%s'", name, g.name),
		}
	}

	rec := g.Record()
	rec.OrphanCollections = slices.DeleteFunc(rec.OrphanCollections, func(o string) bool { return o == name })
	if err := g.apply(ctx, rec); err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{"graph": g.name, "collection": name}).Info("vertex collection removed")

	if dropCollection {
		return g.dropIfUnused(ctx, name)
	}
	return nil
}

func (g *Graph) dropIfUnused(ctx context.Context, collection string) error {
	recs, err := g.registry.records(ctx)
	if err != nil {
		return err
	}
	if usedByAny(collection, recs) {
		return nil
	}
	return g.registry.dropCollection(ctx, collection)
}

// replaceRelation returns a copy of rec with rel swapped in and orphans recomputed.
func replaceRelation(rec *models.GraphRecord, rel models.RelationDefinition) *models.GraphRecord {
	out := &models.GraphRecord{Name: rec.Name, OrphanCollections: slices.Clone(rec.OrphanCollections)}
	previous := rec.VertexCollections()
	for _, r := range rec.EdgeDefinitions {
		if r.Collection == rel.Collection {
			r = rel
		}
		out.EdgeDefinitions = append(out.EdgeDefinitions, r)
	}
	out.OrphanCollections = unreferenced(out.OrphanCollections, out.EdgeDefinitions)
	out.OrphanCollections = append(out.OrphanCollections, dropped(previous, out)...)
	return out
}

// unreferenced filters out orphans that a relation references.
func unreferenced(orphans []string, relations []models.RelationDefinition) []string {
	return slices.DeleteFunc(slices.Clone(orphans), func(o string) bool {
		return referencedByRelations(o, relations)
	})
}

// dropped returns members of previous that rec no longer contains at all.
func dropped(previous []string, rec *models.GraphRecord) []string {
	current := rec.VertexCollections()
	var out []string
	for _, v := range previous {
		if !slices.Contains(current, v) {
			out = append(out, v)
		}
	}
	return out
}
