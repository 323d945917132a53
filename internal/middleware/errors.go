package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/docgraph/internal/httputil"
	"github.com/persistorai/docgraph/internal/metrics"
)

// respondError writes a transport-level error. Such errors carry no graph errorNum.
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, 0, message)
}
