package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/api"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/memstore"
	"github.com/persistorai/docgraph/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// failingPinger is a store that cannot be reached.
type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

// newTestApp returns the full router over a fresh in-memory store.
func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	return newTestAppWithOrigins(t, nil)
}

// newTestAppWithOrigins is newTestApp with CORS enabled for origins.
func newTestAppWithOrigins(t *testing.T, origins []string) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := testLogger()
	store := memstore.New(log)
	svc := service.NewGraphService(graph.NewRegistry(store, log, graph.WithBatchSize(2)), nil, log)

	return api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Store:       store,
		Graphs:      svc,
		Elements:    svc,
		Traversal:   svc,
		CORSOrigins: origins,
		Version:     "test",
		StoreDriver: "memory",
		RateLimit:   10000,
		RateBurst:   10000,
	})
}

// doRequest performs an HTTP request against the handler and returns the recorder.
func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

// mustStatus fails the test unless w carries the wanted status, and decodes the body.
func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()

	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	return body
}

// seedSocial creates graph "social" with person vertices a, b, c and knows edges
// a->b, b->c, c->a.
func seedSocial(t *testing.T, h http.Handler) {
	t.Helper()

	mustStatus(t, doRequest(h, http.MethodPost, "/api/v1/graphs",
		`{"name":"social","edgeDefinitions":[{"collection":"knows","from":["person"],"to":["person"]}]}`), http.StatusCreated)

	for _, k := range []string{"a", "b", "c"} {
		mustStatus(t, doRequest(h, http.MethodPost, "/api/v1/graphs/social/vertex/person",
			`{"_key":"`+k+`","name":"`+k+`"}`), http.StatusCreated)
	}
	for i, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		body := `{"_key":"` + string(rune('1'+i)) + `","_from":"person/` + pair[0] + `","_to":"person/` + pair[1] + `"}`
		mustStatus(t, doRequest(h, http.MethodPost, "/api/v1/graphs/social/edge/knows/docs", body), http.StatusCreated)
	}
}
