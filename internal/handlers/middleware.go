package handlers

import (
	"net/http"
	"strings"

	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by sessionMiddleware.
const (
	ctxUserID  = "userId"
	ctxSession = "session"
)

// sessionMiddleware admits requests whose token belongs to the live
// session. Browsers cannot set headers on a websocket upgrade, so the
// token may also come as ?token=.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token := c.Query("token")
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}
		token = parts[1]
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	claims, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	s, err := h.services.Sessions.Get(claims.SessionID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "session is no longer active",
		})
		return
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxSession, s)
	c.Next()
}

func currentSession(c *gin.Context) *service.Session {
	return c.MustGet(ctxSession).(*service.Session)
}

// loginRateLimit throttles login attempts across all clients.
func (h *Handler) loginRateLimit(c *gin.Context) {
	if h.loginLimiter != nil && !h.loginLimiter.Allow() {
		if h.log != nil {
			h.log.Warnw("login_rate_limited", "remote", c.ClientIP())
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
		return
	}
	c.Next()
}
