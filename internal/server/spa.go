package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// handleSPA serves a prebuilt frontend from dir. Requests that don't name a
// real file get index.html so client-side routing can take over.
func handleSPA(dir string) http.HandlerFunc {
	static := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			static.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
