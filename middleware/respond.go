package middleware

import "github.com/gin-gonic/gin"

// Codes for failures raised before a handler runs.
const (
	codeRateLimited = "RATE_LIMITED"
	codeForbidden   = "FORBIDDEN"
)

// abort stops the chain with a failure envelope.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "code": code, "message": message})
}
