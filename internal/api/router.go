package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Store       Pinger
	Graphs      GraphService
	Elements    ElementService
	Traversal   TraversalService
	CORSOrigins []string
	Version     string
	StoreDriver string
	RateLimit   float64
	RateBurst   int
}

// Router-level limits.
const (
	maxBodySize      = 10 << 20 // 10 MB
	defaultRateLimit = 50       // requests per second per IP
	defaultRateBurst = 100      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	rateLimit, rateBurst := deps.RateLimit, deps.RateBurst
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	if rateBurst <= 0 {
		rateBurst = defaultRateBurst
	}

	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	// No configured origins means cross-origin requests get no CORS headers at all.
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			MaxAge:           1 * time.Hour,
			AllowCredentials: false,
		}))
	}
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.Metrics())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Store, log, deps.Version, deps.StoreDriver)
	graphs := NewGraphHandler(deps.Graphs, log)
	elements := NewElementHandler(deps.Elements, log)
	traversal := NewTraversalHandler(deps.Traversal, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Graph definitions.
	api.GET("/graphs", graphs.List)
	api.POST("/graphs", graphs.Create)
	api.GET("/graphs/:graph", graphs.Get)
	api.DELETE("/graphs/:graph", graphs.Drop)

	// Vertex collections and vertices.
	api.GET("/graphs/:graph/vertex", graphs.VertexCollections)
	api.POST("/graphs/:graph/vertex", graphs.AddVertexCollection)
	api.DELETE("/graphs/:graph/vertex/:collection", graphs.RemoveVertexCollection)
	api.POST("/graphs/:graph/vertex/:collection", elements.CreateVertex)
	api.GET("/graphs/:graph/vertex/:collection", elements.ListVertices)
	api.GET("/graphs/:graph/vertex/:collection/:key", elements.GetVertex)
	api.PUT("/graphs/:graph/vertex/:collection/:key", elements.ReplaceVertex)
	api.PATCH("/graphs/:graph/vertex/:collection/:key", elements.UpdateVertex)
	api.DELETE("/graphs/:graph/vertex/:collection/:key", elements.RemoveVertex)

	// Edge definitions and edges.
	api.GET("/graphs/:graph/edge", graphs.EdgeDefinitions)
	api.POST("/graphs/:graph/edge", graphs.ExtendEdgeDefinitions)
	api.PUT("/graphs/:graph/edge/:collection", graphs.EditEdgeDefinition)
	api.DELETE("/graphs/:graph/edge/:collection", graphs.DeleteEdgeDefinition)
	api.POST("/graphs/:graph/edge/:collection/docs", elements.CreateEdge)
	api.GET("/graphs/:graph/edge/:collection/:key", elements.GetEdge)
	api.PUT("/graphs/:graph/edge/:collection/:key", elements.ReplaceEdge)
	api.PATCH("/graphs/:graph/edge/:collection/:key", elements.UpdateEdge)
	api.DELETE("/graphs/:graph/edge/:collection/:key", elements.RemoveEdge)

	// Traversal.
	api.POST("/graphs/:graph/traversal", traversal.Traverse)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})

	return r
}
