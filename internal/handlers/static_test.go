package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHandler_EmbeddedFallback(t *testing.T) {
	h := NewStaticHandler(filepath.Join(t.TempDir(), "no-dist"))

	for _, target := range []string{"/", "/foo/bar", "/index.html", "/../../etc/passwd"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<title>Photo Gallery</title>")
	}
}

func TestStaticHandler_DistDir(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>built app</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o600))
	h := NewStaticHandler(dist)

	tests := []struct {
		target string
		want   string
	}{
		{target: "/", want: "<html>built app</html>"},
		{target: "/foo/bar", want: "<html>built app</html>"},
		{target: "/assets", want: "<html>built app</html>"},
		{target: "/assets/app.js", want: "console.log(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
