package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/warbler/internal/middleware"
)

// render wraps c.HTML, threading the session user and any queued flash
// messages into every page.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.UserFromContext(c); ok {
		data["CurrentUser"] = user
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	data["Flashes"] = middleware.TakeFlashes(c)
	c.HTML(status, name, data)
}

// notFound renders the uniform 404 page for absent users and messages.
func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", nil)
}
