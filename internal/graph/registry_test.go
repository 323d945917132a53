package graph_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/memstore"
	"github.com/persistorai/docgraph/internal/models"
)

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)
	rel := relation(t, "knows", []string{"person"}, []string{"person"})

	tests := []struct {
		name      string
		graph     string
		relations []models.RelationDefinition
		orphans   []string
		wantErr   error
	}{
		{"empty name", "", []models.RelationDefinition{rel}, nil, models.ErrInvalidName},
		{"blank name", "   ", []models.RelationDefinition{rel}, nil, models.ErrInvalidName},
		{"no relations", "g", nil, nil, models.ErrNoEdgeDefinitions},
		{"edge collection twice", "g", []models.RelationDefinition{rel, rel}, nil, models.ErrCollectionMultiUse},
		{"orphan in relation", "g", []models.RelationDefinition{rel}, []string{"person"}, models.ErrCollectionUsedInEdgeDefinition},
		{"blank orphan", "g", []models.RelationDefinition{rel}, []string{" "}, models.ErrInvalidName},
		{
			"edge collection used as vertex collection", "g",
			[]models.RelationDefinition{rel, relation(t, "likes", []string{"knows"}, []string{"person"})},
			nil, models.ErrWrongCollectionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Create(ctx, tt.graph, tt.relations, tt.orphans...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	names, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreate_ProvisionsCollections(t *testing.T) {
	ctx := context.Background()
	reg, store := newRegistry(t)

	g, err := reg.Create(ctx, "social",
		[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person", "robot"})},
		"place")
	require.NoError(t, err)

	assert.Equal(t, "social", g.Name())
	assert.Equal(t, []string{"knows"}, g.EdgeCollectionNames())
	assert.Equal(t, []string{"person", "place", "robot"}, g.VertexCollectionNames())
	assert.Equal(t, []string{"place"}, g.OrphanCollections())
	requireVertexUnion(t, g)

	for name, typ := range map[string]models.CollectionType{
		"knows":  models.CollectionTypeEdge,
		"person": models.CollectionTypeDocument,
		"robot":  models.CollectionTypeDocument,
		"place":  models.CollectionTypeDocument,
		graph.DefaultGraphCollection: models.CollectionTypeDocument,
	} {
		c, err := store.Collection(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, typ, c.Type(), name)
	}
}

func TestCreate_ExistingCollectionOfWrongType(t *testing.T) {
	ctx := context.Background()
	reg, store := newRegistry(t)

	_, err := store.CreateCollection(ctx, "person", models.CollectionTypeEdge)
	require.NoError(t, err)

	_, err = reg.Create(ctx, "social",
		[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})})
	require.ErrorIs(t, err, models.ErrWrongCollectionType)
}

func TestCreate_Conflicts(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	_, err := reg.Create(ctx, "bla",
		[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})})
	require.NoError(t, err)

	t.Run("same name same collections", func(t *testing.T) {
		_, err := reg.Create(ctx, "bla",
			[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})})
		require.ErrorIs(t, err, models.ErrDuplicateGraph)
	})

	t.Run("same name same relations other orphans", func(t *testing.T) {
		_, err := reg.Create(ctx, "bla",
			[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})},
			"shop")
		require.ErrorIs(t, err, models.ErrDuplicateGraph)
	})

	t.Run("same name different collections", func(t *testing.T) {
		_, err := reg.Create(ctx, "bla",
			[]models.RelationDefinition{relation(t, "likes", []string{"person"}, []string{"food"})})
		require.ErrorIs(t, err, models.ErrConflictingGraphDefinition)
	})

	t.Run("different name same collections", func(t *testing.T) {
		_, err := reg.Create(ctx, "bla2",
			[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})})
		require.ErrorIs(t, err, models.ErrConflictingGraphDefinition)
	})

	t.Run("shared edge collection with other endpoints", func(t *testing.T) {
		_, err := reg.Create(ctx, "bla3",
			[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"robot"})})
		require.ErrorIs(t, err, models.ErrConflictingGraphDefinition)
	})

	t.Run("shared edge collection with same endpoints", func(t *testing.T) {
		g, err := reg.Create(ctx, "bla4",
			[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})},
			"place")
		require.NoError(t, err)
		requireVertexUnion(t, g)
	})

	names, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bla", "bla4"}, names)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	g, err := f.reg.Get(ctx, "bla")
	require.NoError(t, err)
	assert.Equal(t, f.g.Relations(), g.Relations())
	assert.Equal(t, []string{"v1", "v2", "v3"}, g.VertexCollectionNames())

	_, err = f.reg.Get(ctx, "nope")
	require.ErrorIs(t, err, models.ErrGraphNotFound)
	assert.EqualError(t, err, "graph 'nope' not found")

	ok, err := f.reg.Exists(ctx, "bla")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.reg.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_EmptyRegistry(t *testing.T) {
	reg, _ := newRegistry(t)

	_, err := reg.Get(context.Background(), "anything")
	require.ErrorIs(t, err, models.ErrGraphNotFound)

	names, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestGet_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 16
	graphs := make([]*graph.Graph, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			graphs[i], errs[i] = f.reg.Get(ctx, "bla")
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, f.g.Relations(), graphs[i].Relations())
	}
	// Callers sharing one load still get graphs of their own.
	assert.NotSame(t, graphs[0], graphs[1])
}

// metaCancelStore fails metadata lookups made with a cancelled context.
type metaCancelStore struct {
	*memstore.Store
}

func (s metaCancelStore) Collection(ctx context.Context, name string) (domain.Collection, error) {
	if name == graph.DefaultGraphCollection {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return s.Store.Collection(ctx, name)
}

func TestGet_DefinitionReadOutlivesCaller(t *testing.T) {
	f := newFixture(t)
	reg := graph.NewRegistry(metaCancelStore{f.store}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := reg.Get(ctx, "bla")
	require.NoError(t, err)
	assert.Equal(t, f.g.Relations(), g.Relations())
}

func TestDrop_KeepsCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.reg.Drop(ctx, "bla", false))

	_, err := f.reg.Get(ctx, "bla")
	require.ErrorIs(t, err, models.ErrGraphNotFound)

	for _, name := range []string{"included", "excluded", "v1", "v2", "v3"} {
		_, err := f.store.Collection(ctx, name)
		assert.NoError(t, err, name)
	}

	require.ErrorIs(t, f.reg.Drop(ctx, "bla", false), models.ErrGraphNotFound)
}

func TestDrop_DropsUnsharedCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.reg.Create(ctx, "other",
		[]models.RelationDefinition{relation(t, "excluded", []string{"v1"}, []string{"v3"})},
		"v4")
	require.NoError(t, err)

	require.NoError(t, f.reg.Drop(ctx, "bla", true))

	for _, name := range []string{"included", "v2"} {
		_, err := f.store.Collection(ctx, name)
		require.ErrorIs(t, err, models.ErrCollectionNotFound, name)
	}
	for _, name := range []string{"excluded", "v1", "v3", "v4"} {
		_, err := f.store.Collection(ctx, name)
		assert.NoError(t, err, name)
	}
}

func TestRegistry_CustomGraphCollection(t *testing.T) {
	ctx := context.Background()
	reg, store := newRegistry(t, graph.WithGraphCollection("meta"))

	_, err := reg.Create(ctx, "g",
		[]models.RelationDefinition{relation(t, "e", []string{"v"}, []string{"v"})})
	require.NoError(t, err)

	meta, err := store.Collection(ctx, "meta")
	require.NoError(t, err)
	n, err := meta.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Collection(ctx, graph.DefaultGraphCollection)
	require.ErrorIs(t, err, models.ErrCollectionNotFound)
}

func TestExtendEdgeDefinitions(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	g, err := reg.Create(ctx, "g",
		[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})},
		"place")
	require.NoError(t, err)

	require.NoError(t, g.ExtendEdgeDefinitions(ctx, relation(t, "visits", []string{"person"}, []string{"place"})))
	assert.Equal(t, []string{"knows", "visits"}, g.EdgeCollectionNames())
	assert.Empty(t, g.OrphanCollections())
	requireVertexUnion(t, g)

	err = g.ExtendEdgeDefinitions(ctx, relation(t, "visits", []string{"person"}, []string{"place"}))
	require.ErrorIs(t, err, models.ErrCollectionMultiUse)

	err = g.ExtendEdgeDefinitions(ctx, relation(t, "person", []string{"place"}, []string{"place"}))
	require.ErrorIs(t, err, models.ErrWrongCollectionType)

	reloaded, err := reg.Get(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, g.Relations(), reloaded.Relations())
	requireVertexUnion(t, reloaded)
}

func TestExtendEdgeDefinitions_ConflictWithOtherGraph(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	_, err := reg.Create(ctx, "a",
		[]models.RelationDefinition{relation(t, "owns", []string{"person"}, []string{"car"})})
	require.NoError(t, err)
	g, err := reg.Create(ctx, "b",
		[]models.RelationDefinition{relation(t, "knows", []string{"person"}, []string{"person"})})
	require.NoError(t, err)

	err = g.ExtendEdgeDefinitions(ctx, relation(t, "owns", []string{"person"}, []string{"house"}))
	require.ErrorIs(t, err, models.ErrConflictingGraphDefinition)
	assert.Equal(t, []string{"knows"}, g.EdgeCollectionNames())
}

func TestEditEdgeDefinition(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	a, err := reg.Create(ctx, "a",
		[]models.RelationDefinition{relation(t, "owns", []string{"person"}, []string{"car"})})
	require.NoError(t, err)
	_, err = reg.Create(ctx, "b",
		[]models.RelationDefinition{
			relation(t, "owns", []string{"person"}, []string{"car"}),
			relation(t, "knows", []string{"person"}, []string{"person"}),
		})
	require.NoError(t, err)

	require.NoError(t, a.EditEdgeDefinition(ctx, relation(t, "owns", []string{"person"}, []string{"house"})))
	rel, ok := a.Relation("owns")
	require.True(t, ok)
	assert.Equal(t, []string{"house"}, rel.To)
	assert.Equal(t, []string{"car"}, a.OrphanCollections())
	requireVertexUnion(t, a)

	b, err := reg.Get(ctx, "b")
	require.NoError(t, err)
	rel, ok = b.Relation("owns")
	require.True(t, ok)
	assert.Equal(t, []string{"house"}, rel.To)
	requireVertexUnion(t, b)

	err = a.EditEdgeDefinition(ctx, relation(t, "unknown", []string{"person"}, []string{"car"}))
	require.ErrorIs(t, err, models.ErrEdgeCollectionNotUsed)
}

func TestDeleteEdgeDefinition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.g.DeleteEdgeDefinition(ctx, "excluded", true))
	assert.Equal(t, []string{"included"}, f.g.EdgeCollectionNames())
	assert.Equal(t, []string{"v3"}, f.g.OrphanCollections())
	requireVertexUnion(t, f.g)

	_, err := f.store.Collection(ctx, "excluded")
	require.ErrorIs(t, err, models.ErrCollectionNotFound)

	err = f.g.DeleteEdgeDefinition(ctx, "excluded", false)
	require.ErrorIs(t, err, models.ErrEdgeCollectionNotUsed)

	err = f.g.DeleteEdgeDefinition(ctx, "included", false)
	require.ErrorIs(t, err, models.ErrNoEdgeDefinitions)
	assert.Equal(t, []string{"included"}, f.g.EdgeCollectionNames())
}

func TestVertexCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.g.AddVertexCollection(ctx, "v4"))
	assert.Equal(t, []string{"v4"}, f.g.OrphanCollections())
	assert.Contains(t, f.g.VertexCollectionNames(), "v4")
	requireVertexUnion(t, f.g)

	tests := []struct {
		name       string
		collection string
		wantErr    error
	}{
		{"blank", " ", models.ErrInvalidName},
		{"edge collection", "included", models.ErrWrongCollectionType},
		{"used in relation", "v1", models.ErrCollectionUsedInEdgeDefinition},
		{"already orphan", "v4", models.ErrCollectionUsedInOrphans},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, f.g.AddVertexCollection(ctx, tt.collection), tt.wantErr)
		})
	}

	require.ErrorIs(t, f.g.RemoveVertexCollection(ctx, "v1", false), models.ErrNotInOrphanCollection)

	require.NoError(t, f.g.RemoveVertexCollection(ctx, "v4", true))
	assert.Empty(t, f.g.OrphanCollections())
	assert.NotContains(t, f.g.VertexCollectionNames(), "v4")
	requireVertexUnion(t, f.g)

	_, err := f.store.Collection(ctx, "v4")
	require.ErrorIs(t, err, models.ErrCollectionNotFound)
}
