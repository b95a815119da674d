package middleware

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Session requires a bearer token and stores it as the request's
// domain.Session. The token is passed through to collaborators untouched.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		c.Set(sessionKey, domain.Session{Token: token, User: c.GetHeader("X-User")})
		c.Next()
	}
}

// SessionFrom returns the session stored by Session.
func SessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(domain.Session); ok {
			return sess
		}
	}
	return domain.Session{}
}
