package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/persistorai/docgraph/internal/models"
)

const edgesVar = "edges_0"

// Query is an edge traversal over a graph. It is a mutable builder: Restrict and
// Filter change the query in place and return it for chaining. A Query is also its
// own lazy cursor; changing it after a read discards the open execution, so the next
// read always reflects the current query.
//
// A Query must not be shared between goroutines.
type Query struct {
	graph         *Graph
	direction     models.Direction
	startVertices []string
	restrictions  [][]string
	filters       [][]*models.PropertyMap
	cursor        *Cursor
}

// Edges starts a query over edges touching any of the start vertices in either
// direction. Without start vertices every edge of the graph qualifies.
func (g *Graph) Edges(startVertices ...string) *Query {
	return g.newQuery(models.DirectionAny, startVertices)
}

// OutEdges starts a query over edges leaving the start vertices.
func (g *Graph) OutEdges(startVertices ...string) *Query {
	return g.newQuery(models.DirectionOutbound, startVertices)
}

// InEdges starts a query over edges pointing at the start vertices.
func (g *Graph) InEdges(startVertices ...string) *Query {
	return g.newQuery(models.DirectionInbound, startVertices)
}

// Traverse starts a query in the given direction.
func (g *Graph) Traverse(direction models.Direction, startVertices ...string) *Query {
	return g.newQuery(direction, startVertices)
}

func (g *Graph) newQuery(direction models.Direction, startVertices []string) *Query {
	q := &Query{
		graph:         g,
		direction:     direction,
		startVertices: slices.Clone(startVertices),
	}
	q.cursor = newCursor(q, g.registry.batchSize)
	return q
}

// Graph returns the graph the query runs on.
func (q *Query) Graph() *Graph { return q.graph }

// Direction returns the traversal direction.
func (q *Query) Direction() models.Direction { return q.direction }

// Restrict narrows the query to the named edge collections. Every name must be an
// edge collection of the graph; otherwise the query is left unchanged and the error
// lists the unknown names. Repeated calls intersect, each keeping its own bind
// variable.
func (q *Query) Restrict(names ...string) (*Query, error) {
	set := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(set, n) {
			set = append(set, n)
		}
	}
	if len(set) == 0 {
		return q, models.InvalidParameter("restriction needs at least one edge collection")
	}
	if err := CheckRestriction(q.graph, set); err != nil {
		return q, err
	}

	q.restrictions = append(q.restrictions, set)
	q.cursor.invalidate()

	return q, nil
}

// Filter keeps edges matching at least one of the examples. Separate calls must all
// match. A call without examples changes nothing.
func (q *Query) Filter(examples ...*models.PropertyMap) *Query {
	if len(examples) == 0 {
		return q
	}
	group := make([]*models.PropertyMap, 0, len(examples))
	for _, ex := range examples {
		group = append(group, ex.Clone())
	}

	q.filters = append(q.filters, group)
	q.cursor.invalidate()

	return q
}

// PrintQuery renders the query text. Values are never inlined except filter
// examples, which are rendered as JSON.
func (q *Query) PrintQuery() string {
	var b strings.Builder

	b.WriteString("FOR " + edgesVar + " IN GRAPH_EDGES(@graphName,")
	b.WriteString(q.startVertexExpr())
	b.WriteString(`,"` + q.direction.String() + `"`)
	if len(q.restrictions) > 0 {
		b.WriteString(",{}")
		for i := range q.restrictions {
			b.WriteString(",@" + restrictionVar(i))
		}
	}
	b.WriteString(")")

	for _, group := range q.filters {
		b.WriteString(" FILTER MATCHES(" + edgesVar + "," + encodeExamples(group) + ")")
	}

	return b.String()
}

func (q *Query) startVertexExpr() string {
	switch len(q.startVertices) {
	case 0:
		return "{}"
	case 1:
		return "@" + startVertexVar(0)
	default:
		vars := make([]string, len(q.startVertices))
		for i := range q.startVertices {
			vars[i] = "@" + startVertexVar(i)
		}
		return "[" + strings.Join(vars, ",") + "]"
	}
}

// BindVars returns the bind variables referenced by PrintQuery.
func (q *Query) BindVars() map[string]any {
	vars := map[string]any{"graphName": q.graph.name}
	for i, v := range q.startVertices {
		vars[startVertexVar(i)] = v
	}
	for i, r := range q.restrictions {
		vars[restrictionVar(i)] = slices.Clone(r)
	}
	return vars
}

// Statement returns the query in the form executed by the document store.
func (q *Query) Statement() models.Statement {
	filters := make([][]*models.PropertyMap, len(q.filters))
	for i, group := range q.filters {
		filters[i] = slices.Clone(group)
	}
	restrictions := make([][]string, len(q.restrictions))
	for i, r := range q.restrictions {
		restrictions[i] = slices.Clone(r)
	}

	return models.Statement{
		Text:     q.PrintQuery() + " RETURN " + edgesVar,
		BindVars: q.BindVars(),
		Scan: models.EdgeScan{
			EdgeCollections: q.graph.EdgeCollectionNames(),
			StartVertices:   slices.Clone(q.startVertices),
			Direction:       q.direction,
			Restrictions:    restrictions,
			Filters:         filters,
		},
	}
}

func (q *Query) String() string {
	return q.PrintQuery()
}

func startVertexVar(i int) string { return "startVertex_" + strconv.Itoa(i) }

func restrictionVar(i int) string { return "restrictions_" + strconv.Itoa(i) }

// encodeExamples renders examples as a JSON array.
func encodeExamples(examples []*models.PropertyMap) string {
	data, err := json.Marshal(examples)
	if err != nil {
		return fmt.Sprintf("%q", err.Error())
	}
	return string(data)
}
