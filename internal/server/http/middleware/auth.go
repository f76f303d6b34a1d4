package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/peertrade/escrowd/internal/pkg/auth"
)

// PartyIDContextKey is a gin context key for the authenticated party identifier.
const PartyIDContextKey = "partyID"

// TokenParser verifies a bearer token and returns its subject.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// AuthRequired ensures the request carries a valid party token.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return requireToken(parser)
}

// AdminRequired ensures the request carries a valid admin token.
func AdminRequired(parser TokenParser) gin.HandlerFunc {
	return requireToken(parser)
}

func requireToken(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		subject, err := parser.ParseToken(token)
		if err != nil {
			if err == pkgAuth.ErrInvalidToken {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(PartyIDContextKey, subject)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
