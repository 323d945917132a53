package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/memstore"
	"github.com/persistorai/docgraph/internal/models"
)

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []models.AuditEntry

	err error
}

func (m *mockAuditor) RecordAudit(_ context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *entry)
	return m.err
}

func (m *mockAuditor) getCalls() []models.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.AuditEntry, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// mockEnqueuer records enqueued audit entries synchronously.
type mockEnqueuer struct {
	mu      sync.Mutex
	entries []*models.AuditEntry
}

func (m *mockEnqueuer) Enqueue(entry *models.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *mockEnqueuer) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func props(kv ...any) *models.PropertyMap {
	m := models.NewPropertyMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

// newTestService returns a GraphService over a fresh in-memory store.
func newTestService(t *testing.T) (*GraphService, *mockEnqueuer, *memstore.Store) {
	t.Helper()
	store := memstore.New(quietLogger())
	reg := graph.NewRegistry(store, quietLogger(), graph.WithBatchSize(2))
	enq := &mockEnqueuer{}
	return NewGraphService(reg, enq, quietLogger()), enq, store
}

// socialGraph creates graph "social" with person vertices a, b, c and knows edges
// a->b, b->c, c->a.
func socialGraph(t *testing.T, svc *GraphService) {
	t.Helper()
	ctx := context.Background()

	knows, err := models.UndirectedRelation("knows", []string{"person"})
	if err != nil {
		t.Fatalf("UndirectedRelation: %v", err)
	}
	if _, err := svc.CreateGraph(ctx, models.CreateGraphRequest{
		Name:            "social",
		EdgeDefinitions: []models.RelationDefinition{knows},
	}); err != nil {
		t.Fatalf("CreateGraph: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		if _, err := svc.CreateVertex(ctx, "social", "person", props("_key", k, "name", k)); err != nil {
			t.Fatalf("CreateVertex %s: %v", k, err)
		}
	}
	for i, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		_, err := svc.CreateEdge(ctx, "social", "knows",
			props("_key", string(rune('1'+i)), "_from", "person/"+pair[0], "_to", "person/"+pair[1], "weight", i))
		if err != nil {
			t.Fatalf("CreateEdge %v: %v", pair, err)
		}
	}
}
