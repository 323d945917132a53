package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNumEdgeRemovalFailed is the errorNum of a vertex removal that removed the
// vertex but not all of its edges.
const ErrNumEdgeRemovalFailed = 1908

// APIError represents a structured error response from the docgraph API. ErrorNum
// is the graph error number, zero for transport errors such as rate limiting.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	ErrorNum   int    `json:"errorNum,omitempty"`
	Message    string `json:"errorMessage"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("docgraph: %d %s: %s", e.StatusCode, e.Code, e.Message)
	if e.ErrorNum != 0 {
		msg += fmt.Sprintf(" [%d]", e.ErrorNum)
	}
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request_id=%s)", e.RequestID)
	}
	return msg
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict returns true if the error is a 409 conflict.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// ErrorNum returns the graph error number carried by err, or zero.
func ErrorNum(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.ErrorNum
	}
	return 0
}

func hasStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == status
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
