package api

import (
	"github.com/gin-gonic/gin"
)

// render writes the view context for template as JSON
func (h *Handlers) render(c *gin.Context, status int, template string, ctx gin.H) {
	body := gin.H{"template": template}
	for k, v := range ctx {
		body[k] = v
	}
	c.JSON(status, body)
}
