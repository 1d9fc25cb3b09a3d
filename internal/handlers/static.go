package handlers

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"photo-gallery/internal/web"

	"github.com/rs/zerolog/log"
)

// StaticHandler serves the client application: files that exist under the
// dist directory, and the entry document for every other path
type StaticHandler struct {
	distDir string
}

// NewStaticHandler creates a new static handler. distDir may be empty.
func NewStaticHandler(distDir string) *StaticHandler {
	return &StaticHandler{distDir: distDir}
}

// ServeHTTP handles GET /*
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.distDir != "" {
		clean := path.Clean("/" + r.URL.Path)
		full := filepath.Join(h.distDir, filepath.FromSlash(clean))
		if st, err := os.Stat(full); err == nil && !st.IsDir() && clean != "/index.html" {
			http.ServeFile(w, r, full)
			return
		}
	}

	h.serveIndex(w)
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter) {
	var (
		b   []byte
		err error
	)
	if h.distDir != "" {
		b, err = os.ReadFile(filepath.Join(h.distDir, "index.html"))
	}
	if h.distDir == "" || err != nil {
		b, err = fs.ReadFile(web.StaticFS, web.IndexPath)
	}
	if err != nil {
		log.Error().Err(err).Msg("Client entry document missing")
		http.Error(w, "client application missing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
