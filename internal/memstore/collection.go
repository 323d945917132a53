package memstore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// Collection is a handle to one collection of a Store.
type Collection struct {
	store *Store
	name  string
	typ   models.CollectionType
}

var _ domain.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Type returns the collection type.
func (c *Collection) Type() models.CollectionType { return c.typ }

// Save inserts doc, generating a key when none is set.
func (c *Collection) Save(_ context.Context, doc *models.Document) (*models.Document, error) {
	stored, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	stored.Collection = c.name
	if stored.Key == "" {
		stored.Key = newKey()
	}
	if err := c.checkEndpoints(stored); err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return nil, err
	}
	if _, exists := data.docs.Get(stored); exists {
		return nil, models.UniqueConstraintViolated(stored.ID())
	}
	data.docs.Set(stored)

	return copyDoc(stored), nil
}

// Document returns the document with the given id.
func (c *Collection) Document(_ context.Context, id string) (*models.Document, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return nil, err
	}
	doc, ok := data.docs.Get(&models.Document{Key: key})
	if !ok {
		return nil, models.DocumentNotFound(id)
	}

	return copyDoc(doc), nil
}

// Replace swaps the user properties of a document.
func (c *Collection) Replace(_ context.Context, id string, props *models.PropertyMap) (*models.Document, error) {
	return c.modify(id, func(doc *models.Document) {
		doc.Properties = props.UserProperties()
	})
}

// Update merges props into a document.
func (c *Collection) Update(_ context.Context, id string, props *models.PropertyMap) (*models.Document, error) {
	return c.modify(id, func(doc *models.Document) {
		doc.Properties = doc.Properties.Clone().Merge(props.UserProperties())
	})
}

func (c *Collection) modify(id string, apply func(doc *models.Document)) (*models.Document, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return nil, err
	}
	current, ok := data.docs.Get(&models.Document{Key: key})
	if !ok {
		return nil, models.DocumentNotFound(id)
	}

	next := current.Clone()
	apply(next)
	stored, err := normalize(next)
	if err != nil {
		return nil, err
	}
	data.docs.Set(stored)

	return copyDoc(stored), nil
}

// Remove deletes a document, reporting false when it does not exist.
func (c *Collection) Remove(_ context.Context, id string) (bool, error) {
	key, err := c.keyOf(id)
	if err != nil {
		return false, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return false, err
	}
	_, removed := data.docs.Delete(&models.Document{Key: key})

	if removed {
		c.store.log.WithFields(logrus.Fields{"collection": c.name, "id": id}).Debug("document removed")
	}

	return removed, nil
}

// Count returns the number of documents.
func (c *Collection) Count(_ context.Context) (int64, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return 0, err
	}
	return int64(data.docs.Len()), nil
}

// ByExample returns documents whose properties match example, in key order.
func (c *Collection) ByExample(_ context.Context, example *models.PropertyMap, limit int) ([]*models.Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	data, err := c.store.data(c.name)
	if err != nil {
		return nil, err
	}

	out := []*models.Document{}
	data.docs.Scan(func(doc *models.Document) bool {
		if doc.View().Matches(example) {
			out = append(out, copyDoc(doc))
		}
		return limit <= 0 || len(out) < limit
	})

	return out, nil
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

func (c *Collection) checkEndpoints(doc *models.Document) error {
	if c.typ != models.CollectionTypeEdge {
		doc.From, doc.To = "", ""
		return nil
	}
	if _, _, err := models.ParseID(doc.From); err != nil {
		return err
	}
	if _, _, err := models.ParseID(doc.To); err != nil {
		return err
	}
	return nil
}

// copyDoc returns a deep copy of a stored, already normalized document.
func copyDoc(doc *models.Document) *models.Document {
	out, err := normalize(doc)
	if err != nil {
		return doc.Clone()
	}
	return out
}
