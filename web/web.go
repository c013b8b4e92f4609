// Package web embeds the single-page conversation front-end so the API
// binary serves the whole application.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// Handler serves the embedded front-end, with index.html at the root.
func Handler() http.Handler {
	content, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The subtree is embedded at compile time; a failure here means the
		// binary itself is broken.
		panic(err)
	}
	return http.FileServer(http.FS(content))
}
