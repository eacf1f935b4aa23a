package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetCacheControl = "public, max-age=31536000"

// assetHandler serves hashed build assets, which never change once written.
func (s *Server) assetHandler() http.Handler {
	dir := filepath.Join(s.siteDir, "assets")
	fs := http.StripPrefix("/assets/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", assetCacheControl)
		fs.ServeHTTP(w, r)
	})
}

// siteHandler serves the web front end. Paths that do not name a file fall
// back to index.html so client-side routes survive a reload.
func (s *Server) siteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.siteDir == "" {
			http.NotFound(w, r)
			return
		}

		if path, ok := s.resolveSitePath(r.URL.Path); ok {
			http.ServeFile(w, r, path)
			return
		}

		index := filepath.Join(s.siteDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}

// resolveSitePath maps a URL path to a regular file under the site
// directory. Paths that escape the directory are rejected.
func (s *Server) resolveSitePath(urlPath string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+urlPath)), "/"))
	if rel == "" || rel == "." {
		return "", false
	}

	root, err := filepath.Abs(s.siteDir)
	if err != nil {
		return "", false
	}
	full := filepath.Join(root, rel)
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}
