package models

import (
	"slices"
	"strings"
)

// RelationDefinition binds one edge collection to the vertex collections its edges
// may start from and point to.
type RelationDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
}

// NewRelation builds a directed relation. From and To keep their order with
// duplicates removed.
func NewRelation(collection string, from, to []string) (RelationDefinition, error) {
	r := RelationDefinition{
		Collection: strings.TrimSpace(collection),
		From:       uniqueNames(from),
		To:         uniqueNames(to),
	}
	if err := r.Validate(); err != nil {
		return RelationDefinition{}, err
	}
	return r, nil
}

// UndirectedRelation builds a relation whose edges may connect any pair of the given
// vertex collections in either direction.
func UndirectedRelation(collection string, vertices []string) (RelationDefinition, error) {
	return NewRelation(collection, vertices, vertices)
}

// Validate checks that the relation is well formed.
func (r RelationDefinition) Validate() error {
	if strings.TrimSpace(r.Collection) == "" {
		return InvalidName("relation name")
	}
	if err := validateNames("from", r.From); err != nil {
		return err
	}
	return validateNames("to", r.To)
}

func validateNames(field string, names []string) error {
	if len(names) == 0 {
		return InvalidParameter(field + " must be a non-empty string or array")
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return InvalidParameter(field + " must not contain empty collection names")
		}
	}
	return nil
}

// AllowsFrom reports whether edges may start in collection.
func (r RelationDefinition) AllowsFrom(collection string) bool {
	return slices.Contains(r.From, collection)
}

// AllowsTo reports whether edges may end in collection.
func (r RelationDefinition) AllowsTo(collection string) bool {
	return slices.Contains(r.To, collection)
}

// VertexCollections returns From followed by the members of To not already in From.
func (r RelationDefinition) VertexCollections() []string {
	out := slices.Clone(r.From)
	for _, c := range r.To {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// SameEndpoints reports whether both relations allow the same from and to sets,
// ignoring order.
func (r RelationDefinition) SameEndpoints(other RelationDefinition) bool {
	return sameSet(r.From, other.From) && sameSet(r.To, other.To)
}

func (r RelationDefinition) String() string {
	return r.Collection + ": [" + strings.Join(r.From, ", ") + "] -> [" + strings.Join(r.To, ", ") + "]"
}

func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(slices.Compact(as), slices.Compact(bs))
}
