package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds the real command tree with PersistentPreRun stubbed out so
// the API client is never initialised. Only argument validation is exercised.
func newTestRoot() *cobra.Command {
	root := newRootCmd()
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {}
	return root
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"graph create needs a name", []string{"graph", "create"}},
		{"graph get takes one name", []string{"graph", "get", "a", "b"}},
		{"graph drop needs a name", []string{"graph", "drop"}},
		{"graph list takes no args", []string{"graph", "list", "extra"}},
		{"vertex add needs a collection", []string{"vertex", "add"}},
		{"vertex get needs a handle", []string{"vertex", "get"}},
		{"vertex remove takes one handle", []string{"vertex", "remove", "a/1", "a/2"}},
		{"vertex list needs a collection", []string{"vertex", "list"}},
		{"edge add needs three args", []string{"edge", "add", "knows", "person/a"}},
		{"edge get needs a handle", []string{"edge", "get"}},
		{"query takes no args", []string{"query", "extra"}},
		{"health takes no args", []string{"health", "extra"}},
		{"unknown flag", []string{"query", "--depth", "2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := executeArgs(t, newTestRoot(), tc.args...); err == nil {
				t.Errorf("expected error for %v, got nil", tc.args)
			}
		})
	}
}

func TestParseRelation(t *testing.T) {
	tests := []struct {
		in      string
		want    []string // collection, from, to
		wantErr bool
	}{
		{in: "knows:person:person", want: []string{"knows", "person", "person"}},
		{in: "lives:person,pet:house", want: []string{"lives", "person,pet", "house"}},
		{in: "knows:person", want: []string{"knows", "person", "person"}},
		{in: "knows", wantErr: true},
		{in: ":person:person", wantErr: true},
		{in: "knows::person", wantErr: true},
		{in: "a:b:c:d", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			rel, err := parseRelation(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", rel)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := []string{rel.Collection, strings.Join(rel.From, ","), strings.Join(rel.To, ",")}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseWhere(t *testing.T) {
	example, err := parseWhere([]string{"age=30", "name=alice", "active=true", `tag="7"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"age": float64(30), "name": "alice", "active": true, "tag": "7"}
	if !reflect.DeepEqual(example, want) {
		t.Errorf("got %v, want %v", example, want)
	}

	if _, err := parseWhere([]string{"novalue"}); err == nil {
		t.Error("expected error for missing '='")
	}
}

func TestParseProps(t *testing.T) {
	props, err := parseProps("")
	if err != nil || len(props) != 0 {
		t.Errorf("empty props: got %v, %v", props, err)
	}

	props, err = parseProps(`{"weight":2}`)
	if err != nil || props["weight"] != float64(2) {
		t.Errorf("got %v, %v", props, err)
	}

	if _, err := parseProps(`[1]`); err == nil {
		t.Error("expected error for non-object props")
	}
}

func TestBuildTraversal(t *testing.T) {
	req, err := buildTraversal("outbound", []string{"person/a"},
		[]string{"knows,likes", "knows"},
		[]string{`{"weight":1}`, `[{"since":2020},{"since":2021}]`},
		true, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Direction != "outbound" || !req.Explain || req.Limit != 10 {
		t.Errorf("unexpected request %+v", req)
	}
	if !reflect.DeepEqual(req.Restrictions, [][]string{{"knows", "likes"}, {"knows"}}) {
		t.Errorf("restrictions: got %v", req.Restrictions)
	}
	if len(req.Filters) != 2 || len(req.Filters[0]) != 1 || len(req.Filters[1]) != 2 {
		t.Errorf("filters: got %v", req.Filters)
	}

	errCases := []struct {
		name      string
		restricts []string
		filters   []string
		limit     int
	}{
		{"negative limit", nil, nil, -1},
		{"empty restrict", []string{" , "}, nil, 0},
		{"bad filter", nil, []string{"{"}, 0},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := buildTraversal("any", nil, tc.restricts, tc.filters, false, tc.limit); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
