package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// spaHandler serves static assets and answers every other GET with the index
// page so client-side routes survive a reload.
type spaHandler struct {
	files     fs.FS
	indexPath string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || name == h.indexPath {
		http.ServeFileFS(w, r, h.files, h.indexPath)
		return
	}

	info, err := fs.Stat(h.files, name)
	if err == nil && !info.IsDir() {
		http.ServeFileFS(w, r, h.files, name)
		return
	}

	if err == nil || errors.Is(err, fs.ErrNotExist) {
		http.ServeFileFS(w, r, h.files, h.indexPath)
		return
	}

	http.NotFound(w, r)
}
