package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/docgraph/internal/httputil"
	"github.com/persistorai/docgraph/internal/metrics"
	"github.com/persistorai/docgraph/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternalError  = "internal_error"
)

// errorStatus maps graph error numbers to HTTP statuses. Numbers not listed are
// server errors.
var errorStatus = map[int]int{
	models.ErrNumBadParameter:                   http.StatusBadRequest,
	models.ErrNumInvalidDocumentHandle:          http.StatusBadRequest,
	models.ErrNumCursorExhausted:                http.StatusBadRequest,
	models.ErrNumInvalidRelation:                http.StatusBadRequest,
	models.ErrNumInvalidName:                    http.StatusBadRequest,
	models.ErrNumNoEdgeDefinitions:              http.StatusBadRequest,
	models.ErrNumWrongCollectionType:            http.StatusBadRequest,
	models.ErrNumInvalidParameter:               http.StatusBadRequest,
	models.ErrNumDocumentNotFound:               http.StatusNotFound,
	models.ErrNumCollectionNotFound:             http.StatusNotFound,
	models.ErrNumGraphNotFound:                  http.StatusNotFound,
	models.ErrNumVertexCollectionNotInGraph:     http.StatusNotFound,
	models.ErrNumEdgeCollectionNotUsed:          http.StatusNotFound,
	models.ErrNumNotInOrphanCollection:          http.StatusNotFound,
	models.ErrNumDuplicateName:                  http.StatusConflict,
	models.ErrNumUniqueConstraintViolated:       http.StatusConflict,
	models.ErrNumDuplicateGraph:                 http.StatusConflict,
	models.ErrNumCollectionMultiUse:             http.StatusConflict,
	models.ErrNumConflictingGraphDefinition:     http.StatusConflict,
	models.ErrNumCollectionUsedInEdgeDefinition: http.StatusConflict,
	models.ErrNumCollectionUsedInOrphans:        http.StatusConflict,
}

// statusCode returns the error code string for an HTTP status.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	default:
		return ErrCodeInternalError
	}
}

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, 0, message)
}

// respondGraphError renders err. Graph errors keep their number and message, and
// their wrapped causes are only logged. Anything else is hidden behind a generic 500.
func (b *baseHandler) respondGraphError(c *gin.Context, op string, err error) {
	var ge *models.GraphError
	if !errors.As(err, &ge) {
		b.log.WithError(err).WithField("op", op).Error("request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	status, ok := errorStatus[ge.Num]
	if !ok {
		status = http.StatusInternalServerError
		b.log.WithError(err).WithField("op", op).Error("request failed")
	}

	code := statusCode(status)
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, ge.Num, ge.Error())
}
