package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

// disposeTimeout bounds the release of a stale execution when its query changes.
const disposeTimeout = 5 * time.Second

type cursorState int

const (
	cursorUnopened cursorState = iota
	cursorOpen
	cursorExhausted
)

func (s cursorState) String() string {
	switch s {
	case cursorOpen:
		return "open"
	case cursorExhausted:
		return "exhausted"
	default:
		return "unopened"
	}
}

// Cursor lazily executes a Query. The first HasNext or Next opens a server-side
// execution and results are fetched in batches. Changing the query closes that
// execution and clears the buffer, so the next read starts over against the current
// query. A Cursor holds at most one open execution at any time.
type Cursor struct {
	query     *Query
	batchSize int
	handle    domain.ServerCursor
	buffer    []*models.Edge
	state     cursorState
}

func newCursor(q *Query, batchSize int) *Cursor {
	return &Cursor{query: q, batchSize: batchSize}
}

// Cursor returns the cursor bound to the query.
func (q *Query) Cursor() *Cursor { return q.cursor }

// HasNext reports whether Next would return an edge.
func (q *Query) HasNext(ctx context.Context) (bool, error) { return q.cursor.HasNext(ctx) }

// Next returns the next edge.
func (q *Query) Next(ctx context.Context) (*models.Edge, error) { return q.cursor.Next(ctx) }

// Count returns the number of edges the query selects.
func (q *Query) Count(ctx context.Context) (int64, error) { return q.cursor.Count(ctx) }

// ToArray returns every edge the query selects. The result never depends on a prior
// partial iteration, but that iteration is discarded: the next HasNext or Next starts
// again from the first edge.
func (q *Query) ToArray(ctx context.Context) ([]*models.Edge, error) { return q.cursor.ToArray(ctx) }

// Close releases the open execution, if any.
func (q *Query) Close(ctx context.Context) error { return q.cursor.Close(ctx) }

// HasNext reports whether Next would return an edge, opening the execution if needed.
func (c *Cursor) HasNext(ctx context.Context) (bool, error) {
	if len(c.buffer) > 0 {
		return true, nil
	}

	switch c.state {
	case cursorExhausted:
		return false, nil
	case cursorUnopened:
		if err := c.open(ctx); err != nil {
			return false, err
		}
	}

	return c.fill(ctx)
}

// Next returns the next edge, failing with models.ErrCursorExhausted past the end.
func (c *Cursor) Next(ctx context.Context) (*models.Edge, error) {
	ok, err := c.HasNext(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.GraphError{Num: models.ErrNumCursorExhausted, Message: "cursor exhausted: no more edges"}
	}

	e := c.buffer[0]
	c.buffer[0] = nil
	c.buffer = c.buffer[1:]
	return e, nil
}

// Count runs a separate count of the current query. It does not open an execution
// and leaves the iteration position alone.
func (c *Cursor) Count(ctx context.Context) (int64, error) {
	stmt := c.query.Statement()
	metrics.CursorExecutions.WithLabelValues("count").Inc()

	n, err := c.query.graph.store.Count(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("counting edges: %w", err)
	}
	return n, nil
}

// ToArray drains a fresh execution of the current query and returns every edge.
// Any open execution is closed first, so a later HasNext starts from the beginning.
func (c *Cursor) ToArray(ctx context.Context) ([]*models.Edge, error) {
	if err := c.Close(ctx); err != nil {
		return nil, err
	}

	handle, err := c.execute(ctx, "drain")
	if err != nil {
		return nil, err
	}
	defer c.dispose(ctx, handle)

	out := []*models.Edge{}
	for {
		batch, err := handle.Fetch(ctx, c.batchSize)
		if err != nil {
			return nil, fmt.Errorf("fetching edges: %w", err)
		}
		if len(batch) == 0 {
			return out, nil
		}
		for _, doc := range batch {
			out = append(out, c.query.graph.arena.edge(doc))
		}
	}
}

// Close releases the open execution and resets the cursor.
func (c *Cursor) Close(ctx context.Context) error {
	c.buffer = nil
	c.state = cursorUnopened
	if c.handle == nil {
		return nil
	}
	h := c.handle
	c.handle = nil
	metrics.CursorHandlesOpen.Dec()
	if err := h.Dispose(ctx); err != nil {
		return fmt.Errorf("disposing cursor: %w", err)
	}
	return nil
}

// invalidate is called whenever the query changes. A cursor that was never opened
// has nothing to discard.
func (c *Cursor) invalidate() {
	if c.state == cursorUnopened && c.handle == nil && len(c.buffer) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), disposeTimeout)
	defer cancel()

	previous := c.state
	if err := c.Close(ctx); err != nil {
		c.query.graph.log.WithError(err).WithField("graph", c.query.graph.name).Warn("failed to dispose stale cursor")
	}

	c.query.graph.log.WithFields(logrus.Fields{
		"graph": c.query.graph.name,
		"state": previous.String(),
	}).Debug("cursor reset after query change")
}

func (c *Cursor) open(ctx context.Context) error {
	handle, err := c.execute(ctx, "iterate")
	if err != nil {
		return err
	}
	c.handle = handle
	c.state = cursorOpen
	return nil
}

func (c *Cursor) execute(ctx context.Context, kind string) (domain.ServerCursor, error) {
	stmt := c.query.Statement()
	metrics.CursorExecutions.WithLabelValues(kind).Inc()

	handle, err := c.query.graph.store.Execute(ctx, stmt, c.batchSize)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", stmt.Text, err)
	}
	metrics.CursorHandlesOpen.Inc()
	return handle, nil
}

// fill fetches the next batch into the buffer, releasing the execution once drained.
func (c *Cursor) fill(ctx context.Context) (bool, error) {
	batch, err := c.handle.Fetch(ctx, c.batchSize)
	if err != nil {
		return false, fmt.Errorf("fetching edges: %w", err)
	}
	if len(batch) == 0 {
		if err := c.Close(ctx); err != nil {
			return false, err
		}
		c.state = cursorExhausted
		return false, nil
	}

	c.buffer = make([]*models.Edge, 0, len(batch))
	for _, doc := range batch {
		c.buffer = append(c.buffer, c.query.graph.arena.edge(doc))
	}
	return true, nil
}

func (c *Cursor) dispose(ctx context.Context, handle domain.ServerCursor) {
	if err := handle.Dispose(ctx); err != nil {
		c.query.graph.log.WithError(err).WithField("graph", c.query.graph.name).Warn("failed to dispose cursor")
	}
	metrics.CursorHandlesOpen.Dec()
}
