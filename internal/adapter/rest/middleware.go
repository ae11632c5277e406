package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/auth"
)

const ownerIDKey = "planwise.owner_id"

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// RequireOwner rejects requests without a valid bearer token and stores the
// token's user id as the request owner.
func RequireOwner(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := auth.BearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			Error(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := verifier.Verify(tok)
		if err != nil {
			Error(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		c.Set(ownerIDKey, claims.UserID)
		c.Next()
	}
}

// ownerID returns the authenticated owner, or "" outside RequireOwner
func ownerID(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}

// CORS allows the configured frontend origins with credentials.
// A "*" entry additionally allows any other origin, without credentials.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			allowed[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		switch {
		case origin == "":
		case allowed[origin]:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			setCORSMethods(h)
		case wildcard:
			// Any origin, but never with credentials.
			h.Set("Access-Control-Allow-Origin", "*")
			setCORSMethods(h)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setCORSMethods(h http.Header) {
	h.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
}

// AccessLog logs one line per request once the handler chain has finished
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
