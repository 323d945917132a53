// Package memstore is an in-process document store. Each collection keeps its
// documents in a B-tree ordered by key, so scans and cursors are deterministic.
//
// Documents are normalized through their JSON form on every write and copied on
// every read, so callers never share mutable state with the store and values compare
// the same way they would after a round trip through Postgres.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

type collectionData struct {
	typ  models.CollectionType
	docs *btree.BTreeG[*models.Document]
}

func byKey(a, b *models.Document) bool {
	return a.Key < b.Key
}

// Store implements domain.DocumentStore in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collectionData
	openCursors atomic.Int64
	log         *logrus.Logger
}

var (
	_ domain.DocumentStore = (*Store)(nil)
	_ domain.Purger        = (*Store)(nil)
)

// New returns an empty store.
func New(log *logrus.Logger) *Store {
	return &Store{
		collections: make(map[string]*collectionData),
		log:         log,
	}
}

// OpenCursors returns the number of cursors opened by Execute and not yet disposed.
func (s *Store) OpenCursors() int64 {
	return s.openCursors.Load()
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Collection returns a handle to an existing collection.
func (s *Store) Collection(_ context.Context, name string) (domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[name]
	if !ok {
		return nil, models.CollectionNotFound(name)
	}

	return &Collection{store: s, name: name, typ: data.typ}, nil
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(_ context.Context, name string, typ models.CollectionType) (domain.Collection, error) {
	if name == "" {
		return nil, models.InvalidName("collection name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return nil, models.DuplicateName(name)
	}
	s.collections[name] = &collectionData{typ: typ, docs: btree.NewBTreeG[*models.Document](byKey)}

	s.log.WithFields(logrus.Fields{"collection": name, "type": typ.String()}).Debug("collection created")

	return &Collection{store: s, name: name, typ: typ}, nil
}

// DropCollection removes a collection and all its documents.
func (s *Store) DropCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		return models.CollectionNotFound(name)
	}
	delete(s.collections, name)

	s.log.WithField("collection", name).Debug("collection dropped")

	return nil
}

// Execute snapshots the selected edges and returns a cursor over the snapshot.
func (s *Store) Execute(_ context.Context, stmt models.Statement, _ int) (domain.ServerCursor, error) {
	docs, err := s.scan(stmt.Scan)
	if err != nil {
		return nil, err
	}

	s.openCursors.Add(1)

	return &cursor{store: s, docs: docs}, nil
}

// Count returns the number of edges the statement selects.
func (s *Store) Count(_ context.Context, stmt models.Statement) (int64, error) {
	docs, err := s.scan(stmt.Scan)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *Store) scan(scan models.EdgeScan) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Document
	for _, name := range scan.Collections() {
		data, ok := s.collections[name]
		if !ok {
			return nil, models.CollectionNotFound(name)
		}
		data.docs.Scan(func(doc *models.Document) bool {
			if scan.Matches(doc) {
				out = append(out, copyDoc(doc))
			}
			return true
		})
	}

	return out, nil
}

// data returns the live collection data; callers must hold s.mu.
func (s *Store) data(name string) (*collectionData, error) {
	data, ok := s.collections[name]
	if !ok {
		return nil, models.CollectionNotFound(name)
	}
	return data, nil
}

type cursor struct {
	store    *Store
	docs     []*models.Document
	pos      int
	disposed bool
}

func (c *cursor) Fetch(_ context.Context, max int) ([]*models.Document, error) {
	if c.disposed {
		return nil, fmt.Errorf("fetching from disposed cursor")
	}
	if max <= 0 {
		max = len(c.docs)
	}
	end := min(c.pos+max, len(c.docs))
	batch := c.docs[c.pos:end]
	c.pos = end
	return batch, nil
}

func (c *cursor) Dispose(_ context.Context) error {
	if c.disposed {
		return nil
	}
	c.disposed = true
	c.docs = nil
	c.store.openCursors.Add(-1)
	return nil
}

// normalize deep-copies doc through its JSON form.
func normalize(doc *models.Document) (*models.Document, error) {
	props, err := models.PropertiesFrom(doc.Properties)
	if err != nil {
		return nil, err
	}
	out := *doc
	out.Properties = props
	return &out, nil
}

func newKey() string {
	return uuid.NewString()
}

// PurgeBefore deletes documents of collection whose field holds an RFC 3339 time
// before cutoff.
func (s *Store) PurgeBefore(_ context.Context, collection, field string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.data(collection)
	if err != nil {
		return 0, err
	}

	var expired []*models.Document
	data.docs.Scan(func(doc *models.Document) bool {
		v, ok := doc.Properties.Get(field)
		if !ok {
			return true
		}
		str, ok := v.(string)
		if !ok {
			return true
		}
		ts, err := time.Parse(time.RFC3339Nano, str)
		if err == nil && ts.Before(cutoff) {
			expired = append(expired, doc)
		}
		return true
	})
	for _, doc := range expired {
		data.docs.Delete(doc)
	}

	return len(expired), nil
}
