package api_test

import (
	"net/http"
	"testing"
)

func TestTraversal(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	seedSocial(t, app)

	tests := []struct {
		name      string
		body      string
		wantCount float64
		wantEdges int
		hasMore   bool
	}{
		{"outbound", `{"direction":"outbound","startVertices":["person/a"]}`, 1, 1, false},
		{"any", `{"direction":"any","startVertices":["person/a"]}`, 2, 2, false},
		{"no start vertices", `{"direction":"any"}`, 3, 3, false},
		{"filtered", `{"direction":"any","filters":[[{"_key":"2"}]]}`, 1, 1, false},
		{"limited", `{"direction":"any","limit":2}`, 3, 2, true},
		{"restricted", `{"direction":"inbound","startVertices":["person/a"],"restrictions":[["knows"]]}`, 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := mustStatus(t, doRequest(app, http.MethodPost, "/api/v1/graphs/social/traversal", tt.body), http.StatusOK)

			if body["count"] != tt.wantCount {
				t.Errorf("expected count %v, got %v", tt.wantCount, body["count"])
			}
			edges, _ := body["edges"].([]any)
			if len(edges) != tt.wantEdges {
				t.Errorf("expected %d edges, got %d", tt.wantEdges, len(edges))
			}
			if more, _ := body["hasMore"].(bool); more != tt.hasMore {
				t.Errorf("expected hasMore %v, got %v", tt.hasMore, more)
			}
		})
	}
}

func TestTraversal_Explain(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	seedSocial(t, app)

	body := mustStatus(t, doRequest(app, http.MethodPost, "/api/v1/graphs/social/traversal",
		`{"direction":"outbound","startVertices":["person/a"],"explain":true}`), http.StatusOK)

	want := `FOR edges_0 IN GRAPH_EDGES(@graphName,@startVertex_0,"outbound",{},@restrictions_0)`
	if body["query"] != want {
		t.Errorf("expected query %q, got %v", want, body["query"])
	}
	bindVars, _ := body["bindVars"].(map[string]any)
	if bindVars["graphName"] != "social" {
		t.Errorf("expected graphName bind var 'social', got %v", bindVars["graphName"])
	}
	if _, ok := body["count"]; ok {
		t.Errorf("explain must not execute, got count %v", body["count"])
	}
}

func TestTraversal_Errors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	seedSocial(t, app)

	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		errorNum float64
	}{
		{"bad direction", "/api/v1/graphs/social/traversal", `{"direction":"sideways"}`, http.StatusBadRequest, 1936},
		{"unknown restriction", "/api/v1/graphs/social/traversal", `{"direction":"any","restrictions":[["likes"]]}`, http.StatusBadRequest, 10},
		{"unknown graph", "/api/v1/graphs/nope/traversal", `{"direction":"any"}`, http.StatusNotFound, 1924},
		{"negative limit", "/api/v1/graphs/social/traversal", `{"direction":"any","limit":-1}`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := mustStatus(t, doRequest(app, http.MethodPost, tt.path, tt.body), tt.status)
			if tt.errorNum != 0 && body["errorNum"] != tt.errorNum {
				t.Errorf("expected errorNum %v, got %v", tt.errorNum, body["errorNum"])
			}
		})
	}
}
