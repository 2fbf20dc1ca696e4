// Package response writes the JSON envelopes used by every handler.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes body with the given status.
func JSON(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// OK writes 200 with body.
func OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Error writes {"error": msg} with the given status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// BadRequest writes 400 {"error": msg}.
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}

// Internal writes 500 {"error": msg}.
func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, msg)
}

// ServiceUnavailable writes 503 {"error": msg}.
func ServiceUnavailable(c *gin.Context, msg string) {
	Error(c, http.StatusServiceUnavailable, msg)
}
