package store_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/docgraph/internal/db"
	"github.com/persistorai/docgraph/internal/dbpool"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/models"
	"github.com/persistorai/docgraph/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 8)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.Migrate(ctx, pool, log); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

// setupStore returns a store and a collection name prefix unique to the test. Every
// collection starting with the prefix is dropped after the test.
func setupStore(t *testing.T) (*store.DocumentStore, string) {
	t.Helper()

	env := getTestEnv(t)
	prefix := "t" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "_"

	t.Cleanup(func() {
		env.pool.Exec(context.Background(), "DELETE FROM gs_collections WHERE name LIKE $1", prefix+"%") //nolint:errcheck // best-effort cleanup
	})

	return store.New(store.Base{Pool: env.pool, Log: env.log}), prefix
}

func props(kv ...any) *models.PropertyMap {
	m := models.NewPropertyMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func TestCollections(t *testing.T) {
	s, p := setupStore(t)
	ctx := context.Background()

	c, err := s.CreateCollection(ctx, p+"v", models.CollectionTypeDocument)
	require.NoError(t, err)
	assert.Equal(t, p+"v", c.Name())
	assert.Equal(t, models.CollectionTypeDocument, c.Type())

	_, err = s.CreateCollection(ctx, p+"v", models.CollectionTypeEdge)
	require.ErrorIs(t, err, models.ErrDuplicateName)

	got, err := s.Collection(ctx, p+"v")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionTypeDocument, got.Type())

	require.NoError(t, s.DropCollection(ctx, p+"v"))
	_, err = s.Collection(ctx, p+"v")
	require.ErrorIs(t, err, models.ErrCollectionNotFound)
	require.ErrorIs(t, s.DropCollection(ctx, p+"v"), models.ErrCollectionNotFound)
}

func TestDocumentLifecycle(t *testing.T) {
	s, p := setupStore(t)
	ctx := context.Background()

	c, err := s.CreateCollection(ctx, p+"v", models.CollectionTypeDocument)
	require.NoError(t, err)

	saved, err := c.Save(ctx, &models.Document{Key: "1", Properties: props("name", "a", "n", 1)})
	require.NoError(t, err)
	assert.Equal(t, p+"v/1", saved.ID())

	_, err = c.Save(ctx, &models.Document{Key: "1", Properties: props()})
	require.ErrorIs(t, err, models.ErrUniqueConstraintViolated)

	generated, err := c.Save(ctx, &models.Document{Properties: props("name", "b")})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Key)

	doc, err := c.Document(ctx, p+"v/1")
	require.NoError(t, err)
	name, _ := doc.Properties.Get("name")
	assert.Equal(t, "a", name)

	updated, err := c.Update(ctx, p+"v/1", props("n", 2, "extra", true))
	require.NoError(t, err)
	n, _ := updated.Properties.Get("n")
	assert.EqualValues(t, 2, n)
	assert.True(t, updated.Properties.Has("name"))

	replaced, err := c.Replace(ctx, p+"v/1", props("only", "this"))
	require.NoError(t, err)
	assert.False(t, replaced.Properties.Has("name"))
	assert.True(t, replaced.Properties.Has("only"))

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	found, err := c.ByExample(ctx, props("name", "b"), 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, generated.ID(), found[0].ID())

	removed, err := c.Remove(ctx, p+"v/1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = c.Remove(ctx, p+"v/1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = c.Document(ctx, p+"v/1")
	require.ErrorIs(t, err, models.ErrDocumentNotFound)
	_, err = c.Document(ctx, "other/1")
	require.ErrorIs(t, err, models.ErrInvalidDocumentHandle)
	_, err = c.Update(ctx, p+"v/missing", props("a", 1))
	require.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestExecute(t *testing.T) {
	s, p := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateCollection(ctx, p+"e", models.CollectionTypeEdge)
	require.NoError(t, err)

	for _, d := range []*models.Document{
		{Key: "1", From: "v/1", To: "v/2", Properties: props("val", true)},
		{Key: "2", From: "v/2", To: "v/1", Properties: props("val", false)},
		{Key: "3", From: "v/1", To: "v/3", Properties: props("val", false)},
	} {
		_, err := e.Save(ctx, d)
		require.NoError(t, err)
	}

	stmt := models.Statement{Scan: models.EdgeScan{
		EdgeCollections: []string{p + "e"},
		StartVertices:   []string{"v/1"},
		Direction:       models.DirectionOutbound,
	}}

	n, err := s.Count(ctx, stmt)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	cur, err := s.Execute(ctx, stmt, 1)
	require.NoError(t, err)

	// Writes after the cursor opened are not visible to it.
	_, err = e.Save(ctx, &models.Document{Key: "4", From: "v/1", To: "v/4", Properties: props()})
	require.NoError(t, err)

	var keys []string
	for {
		batch, err := cur.Fetch(ctx, 0)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		assert.Len(t, batch, 1)
		for _, d := range batch {
			keys = append(keys, d.Key)
		}
	}
	assert.Equal(t, []string{"1", "3"}, keys)

	require.NoError(t, cur.Dispose(ctx))
	require.NoError(t, cur.Dispose(ctx))
	_, err = cur.Fetch(ctx, 1)
	require.Error(t, err)

	stmt.Scan.Filters = [][]*models.PropertyMap{{props("val", true)}}
	n, err = s.Count(ctx, stmt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPurgeBefore(t *testing.T) {
	s, p := setupStore(t)
	ctx := context.Background()

	c, err := s.CreateCollection(ctx, p+"audit", models.CollectionTypeDocument)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = c.Save(ctx, &models.Document{Key: "old", Properties: props("created_at", now.AddDate(0, 0, -400).Format(time.RFC3339Nano))})
	require.NoError(t, err)
	_, err = c.Save(ctx, &models.Document{Key: "new", Properties: props("created_at", now.Format(time.RFC3339Nano))})
	require.NoError(t, err)

	deleted, err := s.PurgeBefore(ctx, p+"audit", "created_at", now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = c.Document(ctx, p+"audit/old")
	require.ErrorIs(t, err, models.ErrDocumentNotFound)
	_, err = c.Document(ctx, p+"audit/new")
	require.NoError(t, err)
}

func TestRegistryOnPostgres(t *testing.T) {
	s, p := setupStore(t)
	ctx := context.Background()

	reg := graph.NewRegistry(s, sharedEnv.log, graph.WithGraphCollection(p+"graphs"), graph.WithBatchSize(2))

	knows, err := models.UndirectedRelation(p+"knows", []string{p + "person"})
	require.NoError(t, err)
	g, err := reg.Create(ctx, "social", []models.RelationDefinition{knows})
	require.NoError(t, err)

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		v, err := g.AddVertex(ctx, p+"person", props(models.AttrKey, name))
		require.NoError(t, err)
		ids = append(ids, v.ID())
	}
	_, err = g.AddEdge(ctx, p+"knows", ids[0], ids[1], props())
	require.NoError(t, err)
	_, err = g.AddEdge(ctx, p+"knows", ids[1], ids[2], props())
	require.NoError(t, err)
	_, err = g.AddEdge(ctx, p+"knows", ids[2], ids[0], props())
	require.NoError(t, err)

	_, err = g.AddEdge(ctx, p+"knows", ids[0], "stranger/1", props())
	require.ErrorIs(t, err, models.ErrInvalidRelation)

	edges, err := g.Edges(ids[0]).ToArray(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	res, err := g.RemoveVertex(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, res.RemovedEdges, 2)

	all, err := g.Edges().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, all)

	reopened, err := graph.NewRegistry(s, sharedEnv.log, graph.WithGraphCollection(p+"graphs")).Get(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, g.Relations(), reopened.Relations())

	require.NoError(t, reg.Drop(ctx, "social", true))
	_, err = s.Collection(ctx, p+"knows")
	require.ErrorIs(t, err, models.ErrCollectionNotFound)
}
