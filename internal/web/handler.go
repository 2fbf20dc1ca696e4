// Package web serves the embedded browser UI.
package web

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

// Handler serves the static UI pages and assets.
type Handler struct{}

// NewHandler creates a UI handler.
func NewHandler() *Handler { return &Handler{} }

// Register mounts the UI routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.file("static/index.html", "text/html; charset=utf-8"))
	r.GET("/logs", h.file("static/logs.html", "text/html; charset=utf-8"))
	r.GET("/styles.css", h.file("static/styles.css", "text/css; charset=utf-8"))
	r.GET("/script.js", h.file("static/script.js", "application/javascript; charset=utf-8"))
}

func (h *Handler) file(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := staticFS.ReadFile(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, body)
	}
}
