package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// scanQuery renders the SELECT behind a statement.
func scanQuery(stmt models.Statement) (string, []any, error) {
	args := &argList{}
	where, err := buildScanFilter(stmt.Scan, args)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + documentColumns + " FROM gs_documents WHERE " + where + " ORDER BY collection, key", args.args, nil
}

// Execute declares a server-side cursor for the statement inside its own read-only
// transaction. The transaction stays open until the cursor is disposed.
func (s *DocumentStore) Execute(ctx context.Context, stmt models.Statement, batchSize int) (domain.ServerCursor, error) {
	query, args, err := scanQuery(stmt)
	if err != nil {
		return nil, err
	}

	tx, err := s.beginSnapshotTx(ctx)
	if err != nil {
		return nil, err
	}

	name := "gs_cursor_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	declareCtx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := tx.Exec(declareCtx, "DECLARE "+name+" NO SCROLL CURSOR FOR "+query, args...); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, fmt.Errorf("declaring cursor for %s: %w", stmt.Text, err)
	}

	s.Log.WithFields(logrus.Fields{"cursor": name, "query": stmt.Text}).Debug("cursor declared")

	return &cursor{tx: tx, name: name, batchSize: batchSize, log: s.Log}, nil
}

// Count returns the number of edges the statement selects.
func (s *DocumentStore) Count(ctx context.Context, stmt models.Statement) (int64, error) {
	args := &argList{}
	where, err := buildScanFilter(stmt.Scan, args)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM gs_documents WHERE "+where, args.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", stmt.Text, err)
	}
	return n, nil
}

// cursor is a declared Postgres cursor and the transaction that owns it.
type cursor struct {
	mu        sync.Mutex
	tx        pgx.Tx
	name      string
	batchSize int
	log       *logrus.Logger
}

// Fetch returns up to max documents, or the cursor's batch size when max is not
// positive. An empty batch means the cursor is drained.
func (c *cursor) Fetch(ctx context.Context, max int) ([]*models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tx == nil {
		return nil, fmt.Errorf("fetching from disposed cursor %s", c.name)
	}
	if max <= 0 {
		max = c.batchSize
	}
	if max <= 0 {
		max = 100
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := c.tx.Query(ctx, "FETCH FORWARD "+strconv.Itoa(max)+" FROM "+c.name)
	if err != nil {
		return nil, fmt.Errorf("fetching from cursor %s: %w", c.name, err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Dispose closes the cursor and ends its transaction. It is safe to call twice.
func (c *cursor) Dispose(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil

	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("closing cursor %s: %w", c.name, err)
	}

	c.log.WithField("cursor", c.name).Debug("cursor closed")

	return nil
}
