package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/docgraph/internal/models"
)

func example(kv ...any) *models.PropertyMap {
	m := models.NewPropertyMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func TestBuildScanFilter_Directions(t *testing.T) {
	tests := []struct {
		name      string
		direction models.Direction
		want      string
	}{
		{"outbound", models.DirectionOutbound, "collection = ANY($1) AND from_id = ANY($2)"},
		{"inbound", models.DirectionInbound, "collection = ANY($1) AND to_id = ANY($2)"},
		{"any", models.DirectionAny, "collection = ANY($1) AND (from_id = ANY($2) OR to_id = ANY($2))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &argList{}
			got, err := buildScanFilter(models.EdgeScan{
				EdgeCollections: []string{"knows"},
				StartVertices:   []string{"person/a"},
				Direction:       tt.direction,
			}, args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []any{[]string{"knows"}, []string{"person/a"}}, args.args)
		})
	}
}

func TestBuildScanFilter_NoStartVertices(t *testing.T) {
	args := &argList{}
	got, err := buildScanFilter(models.EdgeScan{EdgeCollections: []string{"a", "b"}}, args)
	require.NoError(t, err)
	assert.Equal(t, "collection = ANY($1)", got)
	assert.Equal(t, []any{[]string{"a", "b"}}, args.args)
}

func TestBuildScanFilter_RestrictionsEmptyTheScan(t *testing.T) {
	args := &argList{}
	got, err := buildScanFilter(models.EdgeScan{
		EdgeCollections: []string{"a", "b"},
		Restrictions:    [][]string{{"a"}, {"b"}},
	}, args)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", got)
	assert.Empty(t, args.args)
}

func TestBuildScanFilter_Filters(t *testing.T) {
	args := &argList{}
	got, err := buildScanFilter(models.EdgeScan{
		EdgeCollections: []string{"e"},
		Filters: [][]*models.PropertyMap{
			{example("val", true), example("val", "x")},
			{example(models.AttrFrom, "v/1")},
		},
	}, args)
	require.NoError(t, err)
	assert.Equal(t,
		"collection = ANY($1) AND "+
			"((body -> $2::text = $3::jsonb) OR (body -> $4::text = $5::jsonb)) AND "+
			"((from_id = $6))",
		got)
	assert.Equal(t, []any{[]string{"e"}, "val", "true", "val", `"x"`, "v/1"}, args.args)
}

func TestExampleCondition(t *testing.T) {
	tests := []struct {
		name     string
		example  *models.PropertyMap
		want     string
		wantArgs []any
	}{
		{"empty", example(), "TRUE", nil},
		{"id", example(models.AttrID, "e/1"), "((collection || '/' || key) = $1)", []any{"e/1"}},
		{"key and to", example(models.AttrKey, "1", models.AttrTo, "v/2"), "(key = $1 AND to_id = $2)", []any{"1", "v/2"}},
		{"number", example("n", 2), "(body -> $1::text = $2::jsonb)", []any{"n", "2"}},
		{"nested", example("o", map[string]any{"a": 1}), "(body -> $1::text = $2::jsonb)", []any{"o", `{"a":1}`}},
		{"unknown reserved key", example("x", 1, "_rev", "abc"), "FALSE", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &argList{}
			got, err := exampleCondition(tt.example, args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantArgs, args.args)
		})
	}
}

func TestScanQuery(t *testing.T) {
	query, args, err := scanQuery(models.Statement{Scan: models.EdgeScan{EdgeCollections: []string{"e"}}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+documentColumns+" FROM gs_documents WHERE collection = ANY($1) ORDER BY collection, key", query)
	assert.Len(t, args, 1)
}
