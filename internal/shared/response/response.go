package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope convention: every endpoint replies with a flat JSON object
// carrying "success" plus either the payload fields or an "error" message.
// HTTP status communicates the category.

// OK writes a 200 response with success=true merged into payload.
func OK(c *gin.Context, payload gin.H) {
	OKStatus(c, http.StatusOK, payload)
}

// OKStatus writes success=true merged into payload with an explicit status.
func OKStatus(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Fail writes success=false with a user-facing error message.
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}
