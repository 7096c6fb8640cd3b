// Package middleware – bearer token authentication.
//
// This file verifies "Authorization: Bearer <token>" headers and publishes
// the authenticated user id into the Gin context under "userID", where the
// logging and rate-limiting middleware (and the handlers) pick it up.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenVerifier validates a bearer token and returns the authenticated user
// id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// ContextUserID returns the authenticated user id from the Gin context, or
// "" when the request is anonymous.
func ContextUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid bearer token and sets
// "userID" for the rest of the chain.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing bearer token",
			})
			return
		}
		uid, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}
		c.Set("userID", uid)
		c.Next()
	}
}

// OptionalAuth sets "userID" when a valid bearer token is present and lets
// anonymous requests through untouched. An invalid token is treated as
// anonymous rather than rejected, so public endpoints stay public.
func OptionalAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if uid, err := v.Verify(token); err == nil {
				c.Set("userID", uid)
			}
		}
		c.Next()
	}
}
