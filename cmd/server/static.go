package main

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/huangang/feedbacklens/pkg/response"
)

//go:embed static/*
var staticFiles embed.FS

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// registerStatic serves the embedded submit form at / and the dashboard at
// /admin. Unknown non-API paths fall back to the submit form.
func registerStatic(r *gin.Engine, files fs.FS) {
	staticFS, err := fs.Sub(files, "static")
	if err != nil {
		logger.Warnf("[Static] embedded pages unavailable: %v", err)
		return
	}

	servePage := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			data, readErr := fs.ReadFile(staticFS, name)
			if readErr != nil {
				c.String(http.StatusNotFound, "%s not found", name)
				return
			}
			c.Data(http.StatusOK, contentTypes[".html"], data)
		}
	}
	serveIndex := servePage("index.html")

	r.GET("/", serveIndex)
	r.GET("/admin", servePage("admin.html"))

	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			response.NotFound(c, "Route not found")
			return
		}

		name := strings.TrimPrefix(path.Clean(p), "/")
		if name != "" {
			if data, readErr := fs.ReadFile(staticFS, name); readErr == nil {
				contentType, ok := contentTypes[path.Ext(name)]
				if !ok {
					contentType = "application/octet-stream"
				}
				c.Data(http.StatusOK, contentType, data)
				return
			}
		}

		serveIndex(c)
	})
}
