package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/persistorai/docgraph/internal/models"
)

// argList collects positional query arguments.
type argList struct {
	args []any
}

// add appends v and returns its placeholder.
func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

// buildScanFilter renders an edge scan as a WHERE condition over gs_documents.
func buildScanFilter(scan models.EdgeScan, args *argList) (string, error) {
	collections := scan.Collections()
	if len(collections) == 0 {
		return "FALSE", nil
	}

	conds := []string{"collection = ANY(" + args.add(collections) + ")"}

	if len(scan.StartVertices) > 0 {
		start := args.add(scan.StartVertices)
		switch scan.Direction {
		case models.DirectionOutbound:
			conds = append(conds, "from_id = ANY("+start+")")
		case models.DirectionInbound:
			conds = append(conds, "to_id = ANY("+start+")")
		default:
			conds = append(conds, "(from_id = ANY("+start+") OR to_id = ANY("+start+"))")
		}
	}

	for _, group := range scan.Filters {
		alts := make([]string, 0, len(group))
		for _, example := range group {
			cond, err := exampleCondition(example, args)
			if err != nil {
				return "", err
			}
			alts = append(alts, cond)
		}
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	}

	return strings.Join(conds, " AND "), nil
}

// exampleCondition matches every pair of example. System attributes compare against
// their columns; reserved keys without a column never match.
func exampleCondition(example *models.PropertyMap, args *argList) (string, error) {
	if example.Len() == 0 {
		return "TRUE", nil
	}

	for k := range example.All() {
		if models.IsReservedKey(k) && !systemAttr(k) {
			return "FALSE", nil
		}
	}

	conds := make([]string, 0, example.Len())
	for k, v := range example.All() {
		switch k {
		case models.AttrID:
			conds = append(conds, "(collection || '/' || key) = "+args.add(fmt.Sprint(v)))
		case models.AttrKey:
			conds = append(conds, "key = "+args.add(fmt.Sprint(v)))
		case models.AttrFrom:
			conds = append(conds, "from_id = "+args.add(fmt.Sprint(v)))
		case models.AttrTo:
			conds = append(conds, "to_id = "+args.add(fmt.Sprint(v)))
		default:
			value, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("encoding example value for %q: %w", k, err)
			}
			conds = append(conds, "body -> "+args.add(k)+"::text = "+args.add(string(value))+"::jsonb")
		}
	}

	return "(" + strings.Join(conds, " AND ") + ")", nil
}

func systemAttr(k string) bool {
	switch k {
	case models.AttrID, models.AttrKey, models.AttrFrom, models.AttrTo:
		return true
	}
	return false
}
