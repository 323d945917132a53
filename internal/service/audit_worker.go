package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

const defaultAuditQueueSize = 1000

// AuditEnqueuer accepts audit entries without blocking.
type AuditEnqueuer interface {
	Enqueue(entry *models.AuditEntry)
}

// AuditWorker buffers audit entries and writes them via a single worker goroutine.
type AuditWorker struct {
	auditor domain.Auditor
	log     *logrus.Logger
	jobs    chan *models.AuditEntry
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(auditor domain.Auditor, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	return &AuditWorker{
		auditor: auditor,
		log:     log,
		jobs:    make(chan *models.AuditEntry, queueSize),
	}
}

// Enqueue adds an audit entry. Non-blocking; drops the entry if the queue is full.
func (w *AuditWorker) Enqueue(entry *models.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case w.jobs <- entry:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.AuditDropped.Inc()
		w.log.WithFields(logrus.Fields{"action": entry.Action, "graph": entry.Graph}).Warn("audit queue full, dropping entry")
	}
}

// Run processes audit entries until the context is cancelled, then drains remaining entries.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case entry := <-w.jobs:
			w.process(entry)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case entry := <-w.jobs:
			w.process(entry)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(entry *models.AuditEntry) {
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.auditor.RecordAudit(ctx, entry); err != nil {
		w.log.WithError(err).WithField("action", entry.Action).Warn("audit record failed")
	}
}
