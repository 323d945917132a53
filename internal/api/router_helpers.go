package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/middleware"
	"github.com/persistorai/docgraph/internal/models"
)

// maxListLimit caps the number of documents returned by one listing.
const maxListLimit = 10000

// maxPathParamLen bounds graph, collection and key path parameters.
const maxPathParamLen = 255

// baseHandler carries what every handler needs.
type baseHandler struct {
	log *logrus.Logger
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid := middleware.GetRequestID(c); rid != "" {
			fields["request_id"] = rid
		}
		if graphName := c.Param("graph"); graphName != "" {
			fields["graph"] = graphName
		}
		log.WithFields(fields).Info("request")
	}
}

// parseLimit parses a positive limit, falling back when absent or invalid.
func parseLimit(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	return min(v, maxListLimit)
}

// parseBool reads a boolean query flag; anything unparsable is false.
func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

// validatePathParam checks that a path parameter is non-empty and within length limits.
func validatePathParam(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if len(value) > maxPathParamLen {
		return fmt.Errorf("%s exceeds maximum length of %d", name, maxPathParamLen)
	}
	return nil
}

// pathParams validates and returns the named path parameters in order. On failure
// a 400 has been written and ok is false.
func pathParams(c *gin.Context, names ...string) (values []string, ok bool) {
	values = make([]string, len(names))
	for i, name := range names {
		values[i] = c.Param(name)
		if err := validatePathParam(name, values[i]); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return nil, false
		}
	}
	return values, true
}

// exampleFromQuery builds a query-by-example from every query parameter except
// the reserved ones. Values that parse as JSON keep their type, so ?age=30 matches
// the number 30; anything else matches as a string.
func exampleFromQuery(c *gin.Context, reserved ...string) *models.PropertyMap {
	skip := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		skip[r] = true
	}

	example := models.NewPropertyMap()
	for key, values := range c.Request.URL.Query() {
		if skip[key] || len(values) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(values[0]), &v); err != nil {
			v = values[0]
		}
		example.Set(key, v)
	}

	return example
}

// bindProperties decodes the request body as a property map. On failure a 400 has
// been written and ok is false.
func bindProperties(c *gin.Context) (props *models.PropertyMap, ok bool) {
	props = models.NewPropertyMap()
	if err := c.ShouldBindJSON(props); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return nil, false
	}
	return props, true
}
