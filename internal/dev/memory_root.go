package dev

import (
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/sjc5/lux/internal/buildtime"
	"github.com/sjc5/lux/internal/util"
)

// MemoryRoot serves the output of the latest hot build straight from memory.
type MemoryRoot struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryRoot() *MemoryRoot {
	return &MemoryRoot{files: map[string][]byte{}}
}

// Replace swaps in a whole build at once; files missing from it disappear.
func (m *MemoryRoot) Replace(files []buildtime.OutputFile) {
	next := make(map[string][]byte, len(files))
	for _, f := range files {
		next[path.Clean("/"+f.Path)] = f.Contents
	}
	m.mu.Lock()
	m.files = next
	m.mu.Unlock()
}

func (m *MemoryRoot) Get(urlPath string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path.Clean("/"+urlPath)]
	return content, ok
}

func (m *MemoryRoot) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func (m *MemoryRoot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	content, ok := m.Get(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	contentType := mime.TypeByExtension(path.Ext(r.URL.Path))
	if contentType == "" || strings.HasSuffix(r.URL.Path, ".map") {
		contentType = "application/json"
	}
	etag := `"` + util.ShortHash(content) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(content)
}
