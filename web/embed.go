package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html app.js
var assets embed.FS

// Assets returns the browser client compiled into the binary.
func Assets() fs.FS {
	return assets
}
