package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
)

const (
	// SessionCookie carries the session token for browser clients
	SessionCookie = "session"

	viewerKey = "yatube.viewer"
)

// Middleware resolves the viewer for every request. Requests without a
// usable token proceed anonymously.
func Middleware(issuer *Issuer, users *db.UserRepository) gin.HandlerFunc {
	logger := logging.WithComponent("auth")

	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			logger.Debug("Ignoring session token", zap.Error(err))
			c.Next()
			return
		}

		id, _ := claims.UserID()
		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			logger.Error("Failed to load viewer", zap.Int64("user_id", id), zap.Error(err))
			c.Next()
			return
		}
		if user != nil && user.Username == claims.Username {
			SetCurrentUser(c, user)
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the viewer, or nil for anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(viewerKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SetCurrentUser attaches a viewer to the request
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(viewerKey, user)
}

// LoginRequired redirects anonymous viewers to loginURL with the current
// path in the next parameter
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(loginURL, c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRedirect builds the login URL that returns to next afterwards
func LoginRedirect(loginURL, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	// keep path separators readable, like /auth/login/?next=/create/
	escaped := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	return loginURL + sep + "next=" + escaped
}
