package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// purgeBatchSize limits the number of rows deleted per transaction to avoid
// holding long locks on gs_documents.
const purgeBatchSize = 5000

// PurgeBefore deletes documents of collection whose timestamp property field is older
// than cutoff, in batches. Returns the number of deleted documents.
func (s *DocumentStore) PurgeBefore(ctx context.Context, collection, field string, cutoff time.Time) (int, error) {
	var totalDeleted int

	for {
		batchCtx, cancel := withTimeout(ctx)

		deleted, err := s.purgeBatch(batchCtx, collection, field, cutoff)
		cancel()

		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted < purgeBatchSize {
			break
		}
	}

	if totalDeleted > 0 {
		s.Log.WithFields(logrus.Fields{"collection": collection, "deleted": totalDeleted}).Info("purged old documents")
	}

	return totalDeleted, nil
}

// purgeBatch deletes a single batch of expired documents.
func (s *DocumentStore) purgeBatch(ctx context.Context, collection, field string, cutoff time.Time) (int, error) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	tag, err := tx.Exec(ctx,
		`DELETE FROM gs_documents WHERE ctid IN (
			SELECT ctid FROM gs_documents
			WHERE collection = $1 AND (body ->> $2::text)::timestamptz < $3
			LIMIT $4
		)`,
		collection, field, cutoff, purgeBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("purging %s: %w", collection, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing purge of %s: %w", collection, err)
	}

	return int(tag.RowsAffected()), nil
}
