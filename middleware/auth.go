package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/session"
)

const UserIDKey = "user_id"

// Auth validates the Bearer token against the session store.
func Auth(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abort(c, apperr.CodeUnauthenticated.HTTPStatus(), apperr.CodeUnauthenticated.String(), "missing token")
			return
		}

		userID, err := store.Verify(c.Request.Context(), token)
		if err != nil {
			code := apperr.CodeOf(err)
			msg := "invalid or expired session"
			if code == apperr.CodeInternal {
				msg = "session check failed"
			}
			abort(c, code.HTTPStatus(), code.String(), msg)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// BearerToken returns the credential from the Authorization header without
// checking it, or "" when the header is absent or not a Bearer token.
func BearerToken(c *gin.Context) string {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(int64)
	}
	return 0
}
