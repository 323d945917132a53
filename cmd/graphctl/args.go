package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/persistorai/docgraph/client"
)

// parseRelation parses "collection:from1,from2:to1,to2". A missing to part makes
// the relation undirected over the from collections.
func parseRelation(s string) (client.RelationDefinition, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return client.RelationDefinition{}, fmt.Errorf("edge definition %q must be collection:from[:to]", s)
	}

	rel := client.RelationDefinition{
		Collection: strings.TrimSpace(parts[0]),
		From:       splitList(parts[1]),
	}
	rel.To = rel.From
	if len(parts) == 3 {
		rel.To = splitList(parts[2])
	}
	if rel.Collection == "" || len(rel.From) == 0 || len(rel.To) == 0 {
		return client.RelationDefinition{}, fmt.Errorf("edge definition %q needs a collection and vertex collections", s)
	}
	return rel, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseProps decodes a JSON object given on the command line. Empty means no properties.
func parseProps(s string) (map[string]any, error) {
	props := map[string]any{}
	if s == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, fmt.Errorf("properties must be a JSON object: %w", err)
	}
	return props, nil
}

// parseWhere turns key=value pairs into an example. Values that parse as JSON keep
// their type; anything else is a string.
func parseWhere(pairs []string) (map[string]any, error) {
	example := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--where %q must be key=value", pair)
		}
		var val any
		if err := json.Unmarshal([]byte(v), &val); err != nil {
			val = v
		}
		example[k] = val
	}
	return example, nil
}

// parseFilter decodes one --filter flag: either a JSON object or a JSON array of
// objects, any of which an edge may match.
func parseFilter(s string) ([]map[string]any, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var group []map[string]any
		if err := json.Unmarshal([]byte(s), &group); err != nil {
			return nil, fmt.Errorf("filter %q: %w", s, err)
		}
		return group, nil
	}
	var example map[string]any
	if err := json.Unmarshal([]byte(s), &example); err != nil {
		return nil, fmt.Errorf("filter %q: %w", s, err)
	}
	return []map[string]any{example}, nil
}
