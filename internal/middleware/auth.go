package middleware

import (
	"context"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionSource reports the locally held session.
type SessionSource interface {
	Current(ctx context.Context) domain.Session
}

type failBody struct {
	Status     string `json:"Status"`
	Message    string `json:"Message"`
	RedirectTo string `json:"RedirectTo,omitempty"`
}

// RequireSession rejects requests when no session token is stored.
func RequireSession(sessions SessionSource, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.Current(c.Request.Context()).Active() {
			log.Warnf("Middleware: No active session for %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, failBody{
				Status:     "Fail",
				Message:    domain.ErrAuthRequired.Error(),
				RedirectTo: domain.LoginPath,
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(sessions SessionSource, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Current(c.Request.Context())
		if !s.User.IsAdmin() {
			log.Warnf("Middleware: Non-admin session denied %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, failBody{
				Status:  "Fail",
				Message: domain.ErrForbidden.Error(),
			})
			return
		}
		c.Next()
	}
}
