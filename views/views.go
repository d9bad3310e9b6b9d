// Package views embeds the HTML templates and static assets.
package views

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates static
var content embed.FS

// Templates returns the template tree for the html engine
func Templates() http.FileSystem {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Static returns the static asset tree served under /static
func Static() http.FileSystem {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
