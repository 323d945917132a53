package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/models"
)

// DefaultAuditCollection holds audit entries when no other collection is configured.
const DefaultAuditCollection = "_audit"

// auditTimeField is the document property retention compares against.
const auditTimeField = "created_at"

// Compile-time check: *DocumentAuditor must satisfy domain.Auditor.
var _ domain.Auditor = (*DocumentAuditor)(nil)

// DocumentAuditor stores audit entries as documents of one collection.
type DocumentAuditor struct {
	store      domain.DocumentStore
	collection string
	log        *logrus.Logger

	mu   sync.Mutex
	coll domain.Collection
}

// NewDocumentAuditor creates a DocumentAuditor writing to collection.
func NewDocumentAuditor(store domain.DocumentStore, collection string, log *logrus.Logger) *DocumentAuditor {
	if collection == "" {
		collection = DefaultAuditCollection
	}
	return &DocumentAuditor{store: store, collection: collection, log: log}
}

// RecordAudit saves entry, creating the audit collection on first use.
func (a *DocumentAuditor) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	coll, err := a.auditCollection(ctx)
	if err != nil {
		return err
	}

	props, err := models.PropertiesFrom(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	if _, err := coll.Save(ctx, models.NewDocument(coll.Name(), props)); err != nil {
		return fmt.Errorf("saving audit entry: %w", err)
	}

	return nil
}

// Entries returns up to limit audit entries matching example.
func (a *DocumentAuditor) Entries(ctx context.Context, example *models.PropertyMap, limit int) ([]models.AuditEntry, error) {
	coll, err := a.auditCollection(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := coll.ByExample(ctx, example, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		var e models.AuditEntry
		if err := doc.Properties.Decode(&e); err != nil {
			return nil, fmt.Errorf("decoding audit entry %s: %w", doc.ID(), err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// PurgeOldEntries deletes audit entries older than retentionDays. Stores that cannot
// purge report zero.
func (a *DocumentAuditor) PurgeOldEntries(ctx context.Context, retentionDays int) (int, error) {
	purger, ok := a.store.(domain.Purger)
	if !ok || retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := purger.PurgeBefore(ctx, a.collection, auditTimeField, cutoff)
	if err != nil {
		if errors.Is(err, models.ErrCollectionNotFound) {
			return 0, nil
		}
		return 0, err
	}

	a.log.WithFields(logrus.Fields{
		"retention_days": retentionDays,
		"deleted":        deleted,
	}).Info("audit.purge")

	return deleted, nil
}

// RunRetention purges old entries every interval until ctx is cancelled.
func (a *DocumentAuditor) RunRetention(ctx context.Context, interval time.Duration, retentionDays int) {
	if interval <= 0 || retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.PurgeOldEntries(ctx, retentionDays); err != nil {
				a.log.WithError(err).Warn("audit purge failed")
			}
		}
	}
}

func (a *DocumentAuditor) auditCollection(ctx context.Context) (domain.Collection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.coll != nil {
		return a.coll, nil
	}

	coll, err := a.store.Collection(ctx, a.collection)
	if errors.Is(err, models.ErrCollectionNotFound) {
		coll, err = a.store.CreateCollection(ctx, a.collection, models.CollectionTypeDocument)
		if errors.Is(err, models.ErrDuplicateName) {
			coll, err = a.store.Collection(ctx, a.collection)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit collection %s: %w", a.collection, err)
	}

	a.coll = coll

	return coll, nil
}
