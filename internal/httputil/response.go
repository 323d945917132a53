// Package httputil provides shared HTTP response helpers.
package httputil

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON body of every error response. ErrorNum is the graph
// error number, or zero for transport errors such as rate limiting.
type ErrorResponse struct {
	Error        bool   `json:"error"`
	Code         string `json:"code"`
	ErrorNum     int    `json:"errorNum,omitempty"`
	ErrorMessage string `json:"errorMessage"`
	RequestID    string `json:"request_id,omitempty"`
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code string, errorNum int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:        true,
		Code:         code,
		ErrorNum:     errorNum,
		ErrorMessage: message,
		RequestID:    c.GetString("request_id"),
	})
}
