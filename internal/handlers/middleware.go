package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyUsername  = "username"
	ctxKeyAdmin     = "admin"
	ctxKeyRequestID = "requestID"

	requestIDHeader = "X-Request-Id"
)

// requestIDMiddleware tags every request with an id for log correlation.
func (h *Handler) requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(ctxKeyRequestID, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// authMiddleware validates the bearer token and stores its claims. The
// service-side session stays authoritative; a stale token against a torn-down
// session still fails inside the service with an auth error.
func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	claims, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxKeyUsername, claims.Username)
	c.Set(ctxKeyAdmin, claims.Admin)
	c.Next()
}

// adminMiddleware rejects tokens without the admin claim.
func (h *Handler) adminMiddleware(c *gin.Context) {
	if !c.GetBool(ctxKeyAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "administrator privileges required",
		})
		return
	}
	c.Next()
}
