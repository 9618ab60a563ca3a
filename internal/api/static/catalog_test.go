package static

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"webinterop/geolocation.js": []byte(strings.Repeat("export function getLocation() {}\n", 100)),
		"webinterop/main.wasm":      wasmHeader,
		"index.html":                []byte("<!DOCTYPE html><html><body></body></html>"),
		"notes.md":                  []byte("# notes"),
	}
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
	}
	return dir
}

func TestLoadSelectsIncludedFiles(t *testing.T) {
	c, err := Load(context.Background(), writeBundle(t), []string{"**/*.js", "**/*.wasm", "*.html"})
	require.NoError(t, err)

	assert.Equal(t, []string{"index.html", "webinterop/geolocation.js", "webinterop/main.wasm"}, c.Paths())

	tests := []struct {
		path string
		want string
	}{
		{path: "webinterop/main.wasm", want: "application/wasm"},
		{path: "index.html", want: "text/html"},
		{path: "webinterop/geolocation.js", want: "javascript"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			a, ok := c.Get(tt.path)
			require.True(t, ok)
			assert.Contains(t, a.ContentType, tt.want)
		})
	}

	_, ok := c.Get("notes.md")
	assert.False(t, ok)
	_, ok = c.Get("../index.html")
	assert.True(t, ok, "paths are cleaned before lookup")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)

	_, err = Load(context.Background(), t.TempDir(), []string{"[unclosed"})
	assert.ErrorContains(t, err, "invalid include pattern")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, writeBundle(t), []string{"**"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandler(t *testing.T) {
	c, err := Load(context.Background(), writeBundle(t), []string{"**/*.js", "**/*.wasm"})
	require.NoError(t, err)
	h := c.Handler("/_content/")

	t.Run("gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/_content/webinterop/geolocation.js", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "export function getLocation"))
	})

	t.Run("plain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/_content/webinterop/main.wasm", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
		assert.Equal(t, wasmHeader, rec.Body.Bytes())
	})

	for _, target := range []string{"/_content/missing.js", "/other/webinterop/main.wasm"} {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
