package middleware

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/metrics"
	"github.com/ErlanBelekov/geoquiz/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// TokenVerifier is satisfied by *auth.TokenService.
type TokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}

// Auth verifies the bearer token and attaches the caller's identity to the
// request context. Every failure gets the same 401 body; the reason only
// shows up in metrics.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			reject(c, err)
			return
		}

		id, err := tokens.Verify(raw)
		if err != nil {
			reject(c, err)
			return
		}

		c.Request = c.Request.WithContext(reqctx.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func reject(c *gin.Context, err error) {
	metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing"
	case errors.Is(err, domain.ErrMalformedCredential):
		return "malformed"
	default:
		return "invalid"
	}
}
