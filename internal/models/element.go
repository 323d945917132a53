package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System attribute names carried by every stored document.
const (
	AttrID   = "_id"
	AttrKey  = "_key"
	AttrFrom = "_from"
	AttrTo   = "_to"
)

// CollectionType distinguishes plain document collections from edge collections.
type CollectionType int

// Collection types, numbered as the document store reports them.
const (
	CollectionTypeDocument CollectionType = 2
	CollectionTypeEdge     CollectionType = 3
)

func (t CollectionType) String() string {
	switch t {
	case CollectionTypeDocument:
		return "document"
	case CollectionTypeEdge:
		return "edge"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// DocumentID joins a collection name and a key into a document id.
func DocumentID(collection, key string) string {
	return collection + "/" + key
}

// ParseID splits a "collection/key" id.
func ParseID(id string) (collection, key string, err error) {
	collection, key, ok := strings.Cut(id, "/")
	if !ok || collection == "" || key == "" || strings.Contains(key, "/") {
		return "", "", InvalidDocumentHandle(id)
	}
	return collection, key, nil
}

// CollectionOf returns the collection part of id, or "" when id has none.
func CollectionOf(id string) string {
	collection, _, ok := strings.Cut(id, "/")
	if !ok {
		return ""
	}
	return collection
}

// Document is a stored record as exchanged with the document store. From and To are
// set only for documents of edge collections.
type Document struct {
	Collection string
	Key        string
	From       string
	To         string
	Properties *PropertyMap
}

// NewDocument builds a document for collection from caller-supplied properties. The
// system attributes _key, _from and _to are lifted out of props; other reserved keys
// are discarded.
func NewDocument(collection string, props *PropertyMap) *Document {
	doc := &Document{Collection: collection, Properties: props.UserProperties()}
	if v, ok := props.Get(AttrKey); ok {
		doc.Key = fmt.Sprint(v)
	}
	if v, ok := props.Get(AttrFrom); ok {
		doc.From = fmt.Sprint(v)
	}
	if v, ok := props.Get(AttrTo); ok {
		doc.To = fmt.Sprint(v)
	}
	return doc
}

// withProperties gives doc an empty property map when it has none.
func withProperties(doc *Document) *Document {
	if doc != nil && doc.Properties == nil {
		doc.Properties = NewPropertyMap()
	}
	return doc
}

// ID returns the document id.
func (d *Document) ID() string {
	return DocumentID(d.Collection, d.Key)
}

// IsEdge reports whether the document carries edge endpoints.
func (d *Document) IsEdge() bool {
	return d.From != "" || d.To != ""
}

// Clone returns a copy whose property map can be mutated independently.
func (d *Document) Clone() *Document {
	out := *d
	out.Properties = d.Properties.Clone()
	return withProperties(&out)
}

// View returns the user properties together with the system attributes, as used when
// matching the document against an example.
func (d *Document) View() *PropertyMap {
	m := NewPropertyMap().Set(AttrID, d.ID()).Set(AttrKey, d.Key)
	if d.IsEdge() {
		m.Set(AttrFrom, d.From).Set(AttrTo, d.To)
	}
	return m.Merge(d.Properties)
}

// MarshalJSON renders the document flat, system attributes first.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.View())
}

// UnmarshalJSON parses the flat form produced by MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	m := NewPropertyMap()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	if v, ok := m.Get(AttrID); ok {
		d.Collection = CollectionOf(fmt.Sprint(v))
	}
	doc := NewDocument(d.Collection, m)
	*d = *doc
	return nil
}

// GraphElement is the capability set shared by vertices and edges.
type GraphElement interface {
	ID() string
	Key() string
	Collection() string
	Properties() *PropertyMap
	SetProperty(key string, value any)
	Document() *Document
}

// Vertex is a document of a vertex collection seen through a graph.
type Vertex struct {
	doc *Document
}

// NewVertex wraps doc.
func NewVertex(doc *Document) *Vertex {
	return &Vertex{doc: withProperties(doc)}
}

func (v *Vertex) ID() string               { return v.doc.ID() }
func (v *Vertex) Key() string              { return v.doc.Key }
func (v *Vertex) Collection() string       { return v.doc.Collection }
func (v *Vertex) Properties() *PropertyMap { return v.doc.Properties }
func (v *Vertex) Document() *Document      { return v.doc }

// SetProperty changes a property in memory. Reserved keys are ignored.
func (v *Vertex) SetProperty(key string, value any) {
	if IsReservedKey(key) {
		return
	}
	if v.doc.Properties == nil {
		v.doc.Properties = NewPropertyMap()
	}
	v.doc.Properties.Set(key, value)
}

// Reset replaces the wrapped document, keeping the wrapper identity.
func (v *Vertex) Reset(doc *Document) { v.doc = withProperties(doc) }

// MarshalJSON renders the underlying document.
func (v *Vertex) MarshalJSON() ([]byte, error) { return v.doc.MarshalJSON() }

// Edge is a document of an edge collection seen through a graph.
type Edge struct {
	doc *Document
}

// NewEdge wraps doc.
func NewEdge(doc *Document) *Edge {
	return &Edge{doc: withProperties(doc)}
}

func (e *Edge) ID() string               { return e.doc.ID() }
func (e *Edge) Key() string              { return e.doc.Key }
func (e *Edge) Collection() string       { return e.doc.Collection }
func (e *Edge) Properties() *PropertyMap { return e.doc.Properties }
func (e *Edge) Document() *Document      { return e.doc }

// From returns the id of the source vertex.
func (e *Edge) From() string { return e.doc.From }

// To returns the id of the target vertex.
func (e *Edge) To() string { return e.doc.To }

// SetProperty changes a property in memory. Reserved keys are ignored.
func (e *Edge) SetProperty(key string, value any) {
	if IsReservedKey(key) {
		return
	}
	if e.doc.Properties == nil {
		e.doc.Properties = NewPropertyMap()
	}
	e.doc.Properties.Set(key, value)
}

// Reset replaces the wrapped document, keeping the wrapper identity.
func (e *Edge) Reset(doc *Document) { e.doc = withProperties(doc) }

// MarshalJSON renders the underlying document.
func (e *Edge) MarshalJSON() ([]byte, error) { return e.doc.MarshalJSON() }
