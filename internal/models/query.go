package models

import (
	"fmt"
	"slices"
)

// Direction selects which endpoint of an edge must be a start vertex.
type Direction int

// Traversal directions.
const (
	DirectionAny Direction = iota
	DirectionOutbound
	DirectionInbound
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "outbound"
	case DirectionInbound:
		return "inbound"
	default:
		return "any"
	}
}

// ParseDirection parses "any", "outbound" or "inbound". An empty string means any.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "any":
		return DirectionAny, nil
	case "outbound":
		return DirectionOutbound, nil
	case "inbound":
		return DirectionInbound, nil
	default:
		return DirectionAny, InvalidParameter(fmt.Sprintf("unknown direction %q", s))
	}
}

// EdgeScan is the structured form of a graph edge query.
type EdgeScan struct {
	// EdgeCollections are all edge collections of the graph.
	EdgeCollections []string
	// StartVertices is empty when any vertex qualifies.
	StartVertices []string
	Direction     Direction
	// Restrictions are intersected; each entry narrows the edge collections further.
	Restrictions [][]string
	// Filters are ANDed across entries; the examples inside one entry are ORed.
	Filters [][]*PropertyMap
}

// Collections returns the edge collections that survive every restriction, in graph order.
func (s EdgeScan) Collections() []string {
	out := make([]string, 0, len(s.EdgeCollections))
	for _, c := range s.EdgeCollections {
		if s.allowsCollection(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s EdgeScan) allowsCollection(c string) bool {
	for _, r := range s.Restrictions {
		if !slices.Contains(r, c) {
			return false
		}
	}
	return true
}

// MatchesEndpoints reports whether an edge from..to touches a start vertex in the scan's direction.
func (s EdgeScan) MatchesEndpoints(from, to string) bool {
	if len(s.StartVertices) == 0 {
		return true
	}
	for _, v := range s.StartVertices {
		switch s.Direction {
		case DirectionOutbound:
			if from == v {
				return true
			}
		case DirectionInbound:
			if to == v {
				return true
			}
		default:
			if from == v || to == v {
				return true
			}
		}
	}
	return false
}

// MatchesFilters reports whether doc satisfies every filter group.
func (s EdgeScan) MatchesFilters(doc *Document) bool {
	if len(s.Filters) == 0 {
		return true
	}
	view := doc.View()
	for _, group := range s.Filters {
		matched := false
		for _, example := range group {
			if view.Matches(example) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Matches reports whether doc, a member of one of Collections, is selected by the scan.
func (s EdgeScan) Matches(doc *Document) bool {
	return s.allowsCollection(doc.Collection) &&
		s.MatchesEndpoints(doc.From, doc.To) &&
		s.MatchesFilters(doc)
}

// Statement is a built query handed to the document store. Text and BindVars are the
// printable form; Scan carries the same request in structured form.
type Statement struct {
	Text     string
	BindVars map[string]any
	Scan     EdgeScan
}

// TraversalRequest is the API payload for an edge traversal.
type TraversalRequest struct {
	Direction     string           `json:"direction"`
	StartVertices []string         `json:"startVertices"`
	Restrictions  [][]string       `json:"restrictions,omitempty"`
	Filters       [][]*PropertyMap `json:"filters,omitempty"`
	Explain       bool             `json:"explain,omitempty"`
	Limit         int              `json:"limit,omitempty"`
}

// TraversalResult is the API response for an edge traversal. Count and Edges are
// omitted when the request only asked for an explanation.
type TraversalResult struct {
	Query    string         `json:"query"`
	BindVars map[string]any `json:"bindVars"`
	Count    *int64         `json:"count,omitempty"`
	Edges    []*Document    `json:"edges,omitempty"`
	HasMore  bool           `json:"hasMore,omitempty"`
}
