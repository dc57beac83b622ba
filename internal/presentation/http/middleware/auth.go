package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salesbook-api/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	SubjectKey = "subject"
	EmailKey   = "email"
)

// AuthMiddleware requires a bearer token issued by the identity provider
func AuthMiddleware(verifier *utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(EmailKey, claims.Email)

		c.Next()
	}
}

// GetSubject returns the authenticated subject, or "" for anonymous requests
func GetSubject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}

// CallerID identifies who sent the request: the token subject when present,
// the client IP otherwise
func CallerID(c *gin.Context) string {
	if sub := GetSubject(c); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.ClientIP()
}
