// Package graph implements named property graphs on top of a document store.
//
// A graph is a set of relations, each binding one edge collection to the vertex
// collections its edges may connect. The Registry persists graph definitions in a
// metadata collection and resolves them into Graph values. Graph values enforce
// relations on edge writes, build edge traversal queries with lazy cursors, and
// cascade vertex removal to incident edges.
//
// Relations are only enforced through this package. Writes made directly on the
// underlying collections bypass every check.
package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// Defaults for registry options.
const (
	DefaultGraphCollection = "_graphs"
	DefaultBatchSize       = 100
	DefaultCacheSize       = 4096
)

// loadTimeout bounds a shared graph definition read.
const loadTimeout = 30 * time.Second

// Registry persists and resolves graph definitions.
type Registry struct {
	store           domain.DocumentStore
	log             *logrus.Logger
	graphCollection string
	batchSize       int
	cacheSize       int

	// loads collapses concurrent definition reads of the same graph.
	loads singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithGraphCollection sets the name of the metadata collection.
func WithGraphCollection(name string) Option {
	return func(r *Registry) { r.graphCollection = name }
}

// WithBatchSize sets how many results a cursor fetches per round trip.
func WithBatchSize(n int) Option {
	return func(r *Registry) { r.batchSize = n }
}

// WithCacheSize bounds the per-graph element arena. Zero disables it.
func WithCacheSize(n int) Option {
	return func(r *Registry) { r.cacheSize = n }
}

// NewRegistry creates a Registry over store.
func NewRegistry(store domain.DocumentStore, log *logrus.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:           store,
		log:             log,
		graphCollection: DefaultGraphCollection,
		batchSize:       DefaultBatchSize,
		cacheSize:       DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultBatchSize
	}
	return r
}

// Store returns the underlying document store.
func (r *Registry) Store() domain.DocumentStore {
	return r.store
}

// Create defines and persists a new graph, provisioning any missing collections.
func (r *Registry) Create(ctx context.Context, name string, relations []models.RelationDefinition, orphans ...string) (*Graph, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.InvalidName("graph name")
	}
	if len(relations) == 0 {
		return nil, models.NoEdgeDefinitions(name)
	}

	rec, err := buildRecord(name, relations, orphans)
	if err != nil {
		return nil, err
	}

	others, err := r.records(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkConflicts(rec, others); err != nil {
		return nil, err
	}

	g, err := r.open(ctx, rec)
	if err != nil {
		return nil, err
	}

	meta, err := r.metaCollection(ctx, true)
	if err != nil {
		return nil, err
	}
	doc, err := rec.Document(meta.Name())
	if err != nil {
		return nil, err
	}
	if _, err := meta.Save(ctx, doc); err != nil {
		if errors.Is(err, models.ErrUniqueConstraintViolated) {
			return nil, models.DuplicateGraph(name)
		}
		return nil, fmt.Errorf("saving graph %s: %w", name, err)
	}

	r.log.WithFields(logrus.Fields{
		"graph":           name,
		"edgeCollections": rec.EdgeCollections(),
		"orphans":         rec.OrphanCollections,
	}).Info("graph created")

	return g, nil
}

// Get loads a graph by name.
func (r *Registry) Get(ctx context.Context, name string) (*Graph, error) {
	val, err, _ := r.loads.Do(name, func() (any, error) {
		// Other callers may be waiting on this read, so it must outlive a cancelled
		// first caller.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return r.record(loadCtx, name)
	})
	if err != nil {
		return nil, err
	}

	// The record is shared between callers; open copies what it keeps.
	rec, ok := val.(*models.GraphRecord)
	if !ok {
		return nil, fmt.Errorf("graph: unexpected load result type %T", val)
	}
	return r.open(ctx, rec)
}

// Exists reports whether a graph with this name is registered.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.record(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrGraphNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns the names of all registered graphs, sorted.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	recs, err := r.records(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.Name)
	}
	slices.Sort(names)
	return names, nil
}

// Drop unregisters a graph. With dropCollections it also drops every collection of
// the graph that no other graph uses. Drop stops at the first collection it cannot
// drop; the graph stays unregistered and the remaining collections stay in place.
func (r *Registry) Drop(ctx context.Context, name string, dropCollections bool) error {
	rec, err := r.record(ctx, name)
	if err != nil {
		return err
	}

	meta, err := r.metaCollection(ctx, false)
	if err != nil {
		return err
	}
	if _, err := meta.Remove(ctx, models.DocumentID(meta.Name(), rec.Name)); err != nil {
		return fmt.Errorf("removing graph %s: %w", name, err)
	}

	r.log.WithFields(logrus.Fields{"graph": name, "dropCollections": dropCollections}).Info("graph dropped")

	if !dropCollections {
		return nil
	}

	others, err := r.records(ctx)
	if err != nil {
		return err
	}
	for _, c := range append(rec.EdgeCollections(), rec.VertexCollections()...) {
		if usedByAny(c, others) {
			continue
		}
		if err := r.dropCollection(ctx, c); err != nil {
			return fmt.Errorf("dropping collections of graph %s: %w", name, err)
		}
	}

	return nil
}

// open resolves a record into a Graph, provisioning missing collections.
func (r *Registry) open(ctx context.Context, rec *models.GraphRecord) (*Graph, error) {
	g := &Graph{
		registry: r,
		store:    r.store,
		log:      r.log,
		arena:    newArena(r.cacheSize),
	}
	if err := g.load(ctx, rec); err != nil {
		return nil, err
	}
	return g, nil
}

// record loads the stored definition of one graph.
func (r *Registry) record(ctx context.Context, name string) (*models.GraphRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.InvalidName("graph name")
	}
	meta, err := r.metaCollection(ctx, false)
	if err != nil {
		if errors.Is(err, models.ErrCollectionNotFound) {
			return nil, models.GraphNotFound(name)
		}
		return nil, err
	}
	doc, err := meta.Document(ctx, models.DocumentID(meta.Name(), name))
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) || errors.Is(err, models.ErrInvalidDocumentHandle) {
			return nil, models.GraphNotFound(name)
		}
		return nil, fmt.Errorf("loading graph %s: %w", name, err)
	}
	return models.GraphRecordFromDocument(doc)
}

// records loads every stored graph definition.
func (r *Registry) records(ctx context.Context) ([]*models.GraphRecord, error) {
	meta, err := r.metaCollection(ctx, false)
	if err != nil {
		if errors.Is(err, models.ErrCollectionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	docs, err := meta.ByExample(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}
	out := make([]*models.GraphRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := models.GraphRecordFromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// saveRecord replaces the stored definition of rec.
func (r *Registry) saveRecord(ctx context.Context, rec *models.GraphRecord) error {
	meta, err := r.metaCollection(ctx, false)
	if err != nil {
		return err
	}
	doc, err := rec.Document(meta.Name())
	if err != nil {
		return err
	}
	if _, err := meta.Replace(ctx, doc.ID(), doc.Properties); err != nil {
		return fmt.Errorf("saving graph %s: %w", rec.Name, err)
	}
	return nil
}

func (r *Registry) metaCollection(ctx context.Context, create bool) (domain.Collection, error) {
	if create {
		return r.ensureCollection(ctx, r.graphCollection, models.CollectionTypeDocument)
	}
	c, err := r.store.Collection(ctx, r.graphCollection)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ensureCollection returns the named collection, creating it when missing.
func (r *Registry) ensureCollection(ctx context.Context, name string, typ models.CollectionType) (domain.Collection, error) {
	c, err := r.store.Collection(ctx, name)
	if err == nil {
		if c.Type() != typ {
			return nil, models.WrongCollectionType(name, typ)
		}
		return c, nil
	}
	if !errors.Is(err, models.ErrCollectionNotFound) {
		return nil, fmt.Errorf("looking up collection %s: %w", name, err)
	}

	c, err = r.store.CreateCollection(ctx, name, typ)
	if errors.Is(err, models.ErrDuplicateName) {
		return r.ensureCollection(ctx, name, typ)
	}
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}

	r.log.WithFields(logrus.Fields{"collection": name, "type": typ.String()}).Info("collection provisioned")

	return c, nil
}

func (r *Registry) dropCollection(ctx context.Context, name string) error {
	err := r.store.DropCollection(ctx, name)
	if err != nil && !errors.Is(err, models.ErrCollectionNotFound) {
		return fmt.Errorf("dropping collection %s: %w", name, err)
	}
	r.log.WithField("collection", name).Info("collection dropped")
	return nil
}

// buildRecord validates a definition and normalizes it into a record.
func buildRecord(name string, relations []models.RelationDefinition, orphans []string) (*models.GraphRecord, error) {
	rec := &models.GraphRecord{Name: name, OrphanCollections: []string{}}

	for _, rel := range relations {
		norm, err := models.NewRelation(rel.Collection, rel.From, rel.To)
		if err != nil {
			return nil, err
		}
		if _, dup := rec.Relation(norm.Collection); dup {
			return nil, &models.GraphError{
				Num:     models.ErrNumCollectionMultiUse,
				Message: fmt.Sprintf("multi use of edge collection in edge def: %s", norm.Collection),
			}
		}
		rec.EdgeDefinitions = append(rec.EdgeDefinitions, norm)
	}

	for _, o := range orphans {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, models.InvalidName("orphan collection name")
		}
		if slices.Contains(rec.OrphanCollections, o) {
			continue
		}
		if referencedByRelations(o, rec.EdgeDefinitions) {
			return nil, &models.GraphError{
				Num:     models.ErrNumCollectionUsedInEdgeDefinition,
				Message: fmt.Sprintf("collection '%s' is already used in an edge definition", o),
			}
		}
		rec.OrphanCollections = append(rec.OrphanCollections, o)
	}

	edges := rec.EdgeCollections()
	for _, v := range rec.VertexCollections() {
		if slices.Contains(edges, v) {
			return nil, models.WrongCollectionType(v, models.CollectionTypeDocument)
		}
	}

	return rec, nil
}

// checkConflicts rejects a new definition that collides with a registered graph.
func checkConflicts(rec *models.GraphRecord, others []*models.GraphRecord) error {
	for _, other := range others {
		if other.Name == rec.Name {
			// Orphans alone never make a redefinition conflict.
			if sameRelations(rec, other) {
				return models.DuplicateGraph(rec.Name)
			}
			return models.ConflictingGraphDefinition(fmt.Sprintf("graph '%s' already exists with different edge definitions", rec.Name))
		}
		if sameCollections(rec, other) {
			return models.ConflictingGraphDefinition(fmt.Sprintf("graph '%s' already defines the same collections", other.Name))
		}
		if err := checkSharedRelations(rec.EdgeDefinitions, other); err != nil {
			return err
		}
	}
	return nil
}

// checkSharedRelations requires every edge collection shared with other to carry the
// same from and to sets there.
func checkSharedRelations(relations []models.RelationDefinition, other *models.GraphRecord) error {
	for _, rel := range relations {
		existing, ok := other.Relation(rel.Collection)
		if ok && !existing.SameEndpoints(rel) {
			return models.ConflictingGraphDefinition(fmt.Sprintf(
				"edge collection '%s' is already used by graph '%s' with a different definition", rel.Collection, other.Name))
		}
	}
	return nil
}

func sameCollections(a, b *models.GraphRecord) bool {
	ae, be := a.EdgeCollections(), b.EdgeCollections()
	slices.Sort(ae)
	slices.Sort(be)
	return slices.Equal(ae, be) && slices.Equal(a.VertexCollections(), b.VertexCollections())
}

// sameRelations reports whether a and b define the same edge collections with the
// same endpoints, in any order.
func sameRelations(a, b *models.GraphRecord) bool {
	if len(a.EdgeDefinitions) != len(b.EdgeDefinitions) {
		return false
	}
	for _, rel := range a.EdgeDefinitions {
		existing, ok := b.Relation(rel.Collection)
		if !ok || !existing.SameEndpoints(rel) {
			return false
		}
	}
	return true
}

func referencedByRelations(collection string, relations []models.RelationDefinition) bool {
	for _, rel := range relations {
		if rel.AllowsFrom(collection) || rel.AllowsTo(collection) {
			return true
		}
	}
	return false
}

func usedByAny(collection string, recs []*models.GraphRecord) bool {
	for _, rec := range recs {
		if slices.Contains(rec.EdgeCollections(), collection) || slices.Contains(rec.VertexCollections(), collection) {
			return true
		}
	}
	return false
}
