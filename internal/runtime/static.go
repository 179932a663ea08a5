package runtime

import (
	"net/http"
	"strings"
)

// GetServeStaticHandler serves the public dir. Versioned bundles under /dist
// are cached forever in production since their names change with content.
func (r *Runtime) GetServeStaticHandler(pathPrefix string) http.Handler {
	fileServer := http.StripPrefix(pathPrefix, http.FileServer(http.Dir(r.config.GetPublicDir())))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rel := "/" + strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, pathPrefix), "/")
		if !r.isDev() && strings.HasPrefix(rel, "/dist/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, req)
	})
}

// GetShellHandler renders the shell for every request it receives.
func (r *Runtime) GetShellHandler(data func(*http.Request) ShellData) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := r.shell.Render(w, data(req)); err != nil {
			r.config.Logger.Errorf("error rendering shell: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	})
}
