// Package store implements the document store on PostgreSQL.
//
// Collections are rows of gs_collections and documents are rows of gs_documents,
// keyed by (collection, key). User properties live in a jsonb body; edge endpoints
// are plain columns so traversals can use indexes. Traversals run as server-side
// cursors inside read-only transactions, one transaction per open cursor.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/dbpool"
	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// Postgres error codes mapped to graph errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Base contains shared dependencies for the store types.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// beginSnapshotTx starts a read-only transaction that sees one snapshot for its
// whole lifetime.
func (b *Base) beginSnapshotTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}
	return tx, nil
}

// DocumentStore implements domain.DocumentStore on PostgreSQL.
type DocumentStore struct {
	Base
}

var (
	_ domain.DocumentStore = (*DocumentStore)(nil)
	_ domain.Purger        = (*DocumentStore)(nil)
)

// New creates a DocumentStore.
func New(base Base) *DocumentStore {
	return &DocumentStore{Base: base}
}

// Ping verifies the database is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.Pool.HealthCheck(ctx)
}

// Collection returns a handle to an existing collection.
func (s *DocumentStore) Collection(ctx context.Context, name string) (domain.Collection, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var typ int
	err := s.Pool.QueryRow(ctx, "SELECT type FROM gs_collections WHERE name = $1", name).Scan(&typ)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.CollectionNotFound(name)
		}
		return nil, fmt.Errorf("looking up collection %s: %w", name, err)
	}

	return &Collection{Base: s.Base, name: name, typ: models.CollectionType(typ)}, nil
}

// CreateCollection creates an empty collection.
func (s *DocumentStore) CreateCollection(ctx context.Context, name string, typ models.CollectionType) (domain.Collection, error) {
	if name == "" {
		return nil, models.InvalidName("collection name")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx, "INSERT INTO gs_collections (name, type) VALUES ($1, $2)", name, int(typ))
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return nil, models.DuplicateName(name)
		}
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}

	s.Log.WithFields(logrus.Fields{"collection": name, "type": typ.String()}).Debug("collection created")

	return &Collection{Base: s.Base, name: name, typ: typ}, nil
}

// DropCollection removes a collection and all its documents.
func (s *DocumentStore) DropCollection(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, "DELETE FROM gs_collections WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("dropping collection %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return models.CollectionNotFound(name)
	}

	s.Log.WithField("collection", name).Debug("collection dropped")

	return nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
