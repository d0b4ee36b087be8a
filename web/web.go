// Package web embeds the HTML templates and static assets served by the registry.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template. Templates are named by file name, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Static returns the asset tree mounted under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time, so this cannot fail at runtime.
		panic(err)
	}
	return http.FS(sub)
}
