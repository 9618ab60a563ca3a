// Package static serves the browser bundle (the Go wasm runtime, its
// loader and any page assets) next to the interop endpoint.
package static

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzhttp"
)

// Asset is one file of the bundle, held in memory.
type Asset struct {
	Path        string
	ContentType string
	ModTime     time.Time
	data        []byte
}

// Size returns the asset size in bytes.
func (a *Asset) Size() int { return len(a.data) }

// Catalog is the set of assets selected from a directory.
type Catalog struct {
	root   string
	assets map[string]*Asset
}

// Load walks root and keeps the files whose slash-separated relative path
// matches one of the include globs.
func Load(ctx context.Context, root string, include []string) (*Catalog, error) {
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("assets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets directory %s is not a directory", root)
	}

	c := &Catalog{root: root, assets: make(map[string]*Asset)}
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(include, rel) {
			return nil
		}

		asset, err := readAsset(p, rel)
		if err != nil {
			return err
		}
		mu.Lock()
		c.assets[rel] = asset
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return c, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func readAsset(p, rel string) (*Asset, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return &Asset{
		Path:        rel,
		ContentType: contentType(rel, data),
		ModTime:     info.ModTime(),
		data:        data,
	}, nil
}

// contentType sniffs data and falls back to the extension for text formats
// the sniffer reports as plain text.
func contentType(name string, data []byte) string {
	detected := mimetype.Detect(data)
	if detected.Is("text/plain") || detected.Is("application/octet-stream") {
		if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
			return byExt
		}
	}
	return detected.String()
}

// Get returns the asset at the slash-separated relative path.
func (c *Catalog) Get(rel string) (*Asset, bool) {
	a, ok := c.assets[strings.TrimPrefix(path.Clean("/"+rel), "/")]
	return a, ok
}

// Paths returns the asset paths in order.
func (c *Catalog) Paths() []string {
	paths := make([]string, 0, len(c.assets))
	for p := range c.assets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Handler serves the catalog below prefix with gzip negotiation.
func (c *Catalog) Handler(prefix string) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")
	return gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel, ok := strings.CutPrefix(r.URL.Path, prefix+"/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		asset, ok := c.Get(rel)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", asset.ContentType)
		http.ServeContent(w, r, asset.Path, asset.ModTime, bytes.NewReader(asset.data))
	}))
}
