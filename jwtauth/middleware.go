package jwtauth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChallengeHeader and ChallengeValue tell clients to re-authenticate with a bearer token
const (
	ChallengeHeader = "WWW-Authenticate"
	ChallengeValue  = "Bearer"
)

// StatusClientClosedRequest is recorded when the caller went away mid-authentication
const StatusClientClosedRequest = 499

// JWTAuth returns a Gin middleware that resolves the request's user through g.
// Rejected requests get 401 with a bearer challenge; the user is injected into
// the request context for downstream handlers.
func JWTAuth[U any](g *Guard[U]) gin.HandlerFunc {
	cfg := g.codec.Config()

	return func(c *gin.Context) {
		startTime := time.Now()

		// Generate or extract request ID for correlation
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		token := extractToken(c.Request, cfg)
		a, err := g.authenticate(c.Request.Context(), token)
		logSecurityEvent(cfg.Logger(), newAuthEvent("http", requestID, token, a.subject, a.stage, err, time.Since(startTime)))

		if err != nil {
			if IsUnauthorized(err) {
				c.Header(ChallengeHeader, ChallengeValue)
				c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse())
				return
			}
			if c.Request.Context().Err() != nil {
				c.AbortWithStatus(StatusClientClosedRequest)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "server_error",
				"message": "authentication is temporarily unavailable",
			})
			return
		}

		ctx := WithUser(c.Request.Context(), a.user)
		ctx = WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentUser returns the user JWTAuth resolved for this request
func CurrentUser[U any](c *gin.Context) (*U, bool) {
	return GetUser[U](c.Request.Context())
}

// unauthorizedResponse constructs the uniform rejection body.
// The message is fixed so responses never reveal which check failed.
func unauthorizedResponse() gin.H {
	return gin.H{
		"error":   "unauthorized",
		"message": UnauthorizedMessage,
	}
}
