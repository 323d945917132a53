package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// maxListLimit caps ByExample results when the caller sets no limit.
const maxListLimit = 10000

// Collection is a handle to one collection.
type Collection struct {
	Base
	name string
	typ  models.CollectionType
}

var _ domain.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Type returns the collection type.
func (c *Collection) Type() models.CollectionType { return c.typ }

// Save inserts doc, generating a key when none is set.
func (c *Collection) Save(ctx context.Context, doc *models.Document) (*models.Document, error) {
	key := doc.Key
	if key == "" {
		key = uuid.NewString()
	}
	from, to := doc.From, doc.To
	if c.typ == models.CollectionTypeEdge {
		if _, _, err := models.ParseID(from); err != nil {
			return nil, err
		}
		if _, _, err := models.ParseID(to); err != nil {
			return nil, err
		}
	} else {
		from, to = "", ""
	}

	body, err := encodeBody(doc.Properties)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := c.Pool.QueryRow(ctx, `
		INSERT INTO gs_documents (collection, key, from_id, to_id, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+documentColumns,
		c.name, key, nullable(from), nullable(to), body,
	)
	saved, err := scanDocument(row.Scan)
	if err != nil {
		switch {
		case isPgCode(err, pgUniqueViolation):
			return nil, models.UniqueConstraintViolated(models.DocumentID(c.name, key))
		case isPgCode(err, pgForeignKeyViolation):
			return nil, models.CollectionNotFound(c.name)
		}
		return nil, fmt.Errorf("inserting document into %s: %w", c.name, err)
	}

	return saved, nil
}

// Document returns the document with the given id.
func (c *Collection) Document(ctx context.Context, id string) (*models.Document, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := c.Pool.QueryRow(ctx,
		"SELECT "+documentColumns+" FROM gs_documents WHERE collection = $1 AND key = $2",
		c.name, key,
	)
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.DocumentNotFound(id)
		}
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}

	return doc, nil
}

// Replace swaps the user properties of a document.
func (c *Collection) Replace(ctx context.Context, id string, props *models.PropertyMap) (*models.Document, error) {
	return c.modify(ctx, id, "body = $3", props)
}

// Update merges props into the top level of a document.
func (c *Collection) Update(ctx context.Context, id string, props *models.PropertyMap) (*models.Document, error) {
	return c.modify(ctx, id, "body = body || $3", props)
}

func (c *Collection) modify(ctx context.Context, id, set string, props *models.PropertyMap) (*models.Document, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return nil, err
	}
	body, err := encodeBody(props)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := c.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	row := tx.QueryRow(ctx,
		"UPDATE gs_documents SET "+set+"::jsonb, updated_at = NOW() WHERE collection = $1 AND key = $2 RETURNING "+documentColumns,
		c.name, key, body,
	)
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.DocumentNotFound(id)
		}
		return nil, fmt.Errorf("updating document %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update of %s: %w", id, err)
	}

	return doc, nil
}

// Remove deletes a document, reporting false when it does not exist.
func (c *Collection) Remove(ctx context.Context, id string) (bool, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return false, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := c.Pool.Exec(ctx, "DELETE FROM gs_documents WHERE collection = $1 AND key = $2", c.name, key)
	if err != nil {
		return false, fmt.Errorf("deleting document %s: %w", id, err)
	}

	removed := tag.RowsAffected() > 0
	if removed {
		c.Log.WithFields(logrus.Fields{"collection": c.name, "id": id}).Debug("document removed")
	}

	return removed, nil
}

// Count returns the number of documents.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := c.Pool.QueryRow(ctx, "SELECT count(*) FROM gs_documents WHERE collection = $1", c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.name, err)
	}
	return n, nil
}

// ByExample returns documents whose properties match example, in key order.
func (c *Collection) ByExample(ctx context.Context, example *models.PropertyMap, limit int) ([]*models.Document, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	args := &argList{}
	where := "collection = " + args.add(c.name)
	cond, err := exampleCondition(example, args)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + documentColumns + " FROM gs_documents WHERE " + where + " AND " + cond +
		" ORDER BY key LIMIT " + args.add(limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := c.Pool.Query(ctx, query, args.args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s by example: %w", c.name, err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func (c *Collection) keyOf(id string) (string, error) {
	collection, key, err := models.ParseID(id)
	if err != nil {
		return "", err
	}
	if collection != c.name {
		return "", models.InvalidDocumentHandle(id)
	}
	return key, nil
}
