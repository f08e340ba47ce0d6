package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/identity"
	"github.com/ErlanBelekov/travel-ease/internal/metrics"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"
	errTokenExpired = "Token has expired"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "userID"

// TokenVerifier resolves a bearer token to the user ID it was issued for.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth validates the Bearer token and stores the user ID in both the request
// context and the gin context. Requests without a valid token never reach
// the next handler.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		rawToken, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(rawToken) == "" {
			reject(c, "missing", errUnauthorized)
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(rawToken))
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				reject(c, "expired", errTokenExpired)
				return
			}
			reject(c, "invalid", errUnauthorized)
			return
		}

		c.Request = c.Request.WithContext(identity.WithUserID(c.Request.Context(), userID))
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func reject(c *gin.Context, reason, message string) {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": message})
}
