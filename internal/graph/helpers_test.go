package graph_test

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/memstore"
	"github.com/persistorai/docgraph/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newRegistry(t *testing.T, opts ...graph.Option) (*graph.Registry, *memstore.Store) {
	t.Helper()
	store := memstore.New(testLogger())
	return graph.NewRegistry(store, testLogger(), opts...), store
}

func relation(t *testing.T, collection string, from, to []string) models.RelationDefinition {
	t.Helper()
	r, err := models.NewRelation(collection, from, to)
	require.NoError(t, err)
	return r
}

func props(kv ...any) *models.PropertyMap {
	m := models.NewPropertyMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func edgeIDs(edges []*models.Edge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.ID())
	}
	slices.Sort(out)
	return out
}

func sorted(ids ...string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

// fixture is a graph with two relations:
//
//	included: v1 -> {v1, v2}
//	excluded: v1 -> {v3}
//
// and three edges e1 = v1/1 -> v2/1, e2 = v1/2 -> v1/1, e3 = v1/1 -> v3/1.
type fixture struct {
	reg        *graph.Registry
	store      *memstore.Store
	g          *graph.Graph
	e1, e2, e3 string
}

func newFixture(t *testing.T, opts ...graph.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	reg, store := newRegistry(t, opts...)
	g, err := reg.Create(ctx, "bla",
		[]models.RelationDefinition{
			relation(t, "included", []string{"v1"}, []string{"v1", "v2"}),
			relation(t, "excluded", []string{"v1"}, []string{"v3"}),
		})
	require.NoError(t, err)

	for _, v := range []struct{ collection, key string }{
		{"v1", "1"}, {"v1", "2"}, {"v2", "1"}, {"v3", "1"},
	} {
		_, err := g.AddVertex(ctx, v.collection, props("_key", v.key))
		require.NoError(t, err)
	}

	e1, err := g.AddEdge(ctx, "included", "v1/1", "v2/1", props("val", true))
	require.NoError(t, err)
	e2, err := g.AddEdge(ctx, "included", "v1/2", "v1/1", props("val", false))
	require.NoError(t, err)
	e3, err := g.AddEdge(ctx, "excluded", "v1/1", "v3/1", props("val", false))
	require.NoError(t, err)

	return &fixture{reg: reg, store: store, g: g, e1: e1.ID(), e2: e2.ID(), e3: e3.ID()}
}

// requireVertexUnion checks that the vertex collections of g are exactly the union of
// every relation's from and to sets plus the orphans.
func requireVertexUnion(t *testing.T, g *graph.Graph) {
	t.Helper()
	var want []string
	for _, r := range g.Relations() {
		want = append(want, r.From...)
		want = append(want, r.To...)
	}
	want = append(want, g.OrphanCollections()...)
	slices.Sort(want)
	want = slices.Compact(want)
	require.Equal(t, want, g.VertexCollectionNames())
}

// faultyStore wraps a document store and makes Remove misbehave for chosen ids.
type faultyStore struct {
	domain.DocumentStore

	mu      sync.Mutex
	fail    map[string]error
	refuse  map[string]bool
	removes []string
}

func newFaultyStore(inner domain.DocumentStore) *faultyStore {
	return &faultyStore{DocumentStore: inner, fail: map[string]error{}, refuse: map[string]bool{}}
}

func (s *faultyStore) Collection(ctx context.Context, name string) (domain.Collection, error) {
	c, err := s.DocumentStore.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	return &faultyCollection{Collection: c, store: s}, nil
}

func (s *faultyStore) CreateCollection(ctx context.Context, name string, typ models.CollectionType) (domain.Collection, error) {
	c, err := s.DocumentStore.CreateCollection(ctx, name, typ)
	if err != nil {
		return nil, err
	}
	return &faultyCollection{Collection: c, store: s}, nil
}

type faultyCollection struct {
	domain.Collection
	store *faultyStore
}

func (c *faultyCollection) Remove(ctx context.Context, id string) (bool, error) {
	c.store.mu.Lock()
	c.store.removes = append(c.store.removes, id)
	err, failing := c.store.fail[id]
	refused := c.store.refuse[id]
	c.store.mu.Unlock()

	if failing {
		return false, err
	}
	if refused {
		return false, nil
	}
	return c.Collection.Remove(ctx, id)
}
