package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/follow"
	"github.com/yatube/yatube/internal/posts"
	"github.com/yatube/yatube/pkg/telemetry"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

var errPageNotFound = NewError(http.StatusNotFound, "page not found")

func isNotFound(err error) bool {
	return errors.Is(err, feed.ErrNotFound) ||
		errors.Is(err, follow.ErrNotFound) ||
		errors.Is(err, posts.ErrNotFound)
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, feed.ErrUnauthenticated) ||
		errors.Is(err, follow.ErrUnauthenticated) ||
		errors.Is(err, posts.ErrUnauthenticated)
}

// fail turns a service error into a response. Validation and forbidden
// outcomes are handled by the views themselves.
func (h *Handlers) fail(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case isNotFound(err):
		h.render(c, http.StatusNotFound, "core/404.html", gin.H{"path": c.Request.URL.Path})
	case isUnauthenticated(err):
		c.Redirect(http.StatusFound, auth.LoginRedirect(h.loginURL, c.Request.URL.RequestURI()))
	case errors.As(err, &apiErr):
		if apiErr.Code == http.StatusNotFound {
			h.render(c, http.StatusNotFound, "core/404.html", gin.H{"path": c.Request.URL.Path})
			return
		}
		c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		telemetry.CaptureError(err)
		h.render(c, http.StatusInternalServerError, "core/500.html", gin.H{})
	}
}
