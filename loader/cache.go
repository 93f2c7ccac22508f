package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached tables.
const DefaultCacheSize = 32

// Key identifies one cached table. File sources include their modification
// time and size so an edited file is read again.
type Key struct {
	Identity string
	ModTime  time.Time
	Size     int64
}

// Cache is a bounded LRU of loaded tables. It is the only state shared
// between renders.
type Cache struct {
	entries *lru.Cache[Key, Table]
	metrics *Metrics
	logger  *slog.Logger
}

// NewCache returns a cache holding at most size tables.
func NewCache(size int, metrics *Metrics, logger *slog.Logger) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	entries, err := lru.New[Key, Table](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{entries: entries, metrics: metrics, logger: logger}, nil
}

// KeyFor computes the key of src. The second result is false when src
// cannot be cached: a file that cannot be stat'ed, or an unnamed literal.
func KeyFor(src Source, variant string) (Key, bool) {
	identity := src.String()
	if variant != "" {
		identity += "#" + variant
	}
	switch {
	case src.IsFile():
		info, err := os.Stat(src.Path)
		if err != nil {
			return Key{}, false
		}
		return Key{Identity: identity, ModTime: info.ModTime(), Size: info.Size()}, true
	case src.IsLiteral():
		return Key{Identity: identity}, src.Name != ""
	case src.Kind == KindURL, src.Kind == KindS3:
		return Key{Identity: identity}, true
	}
	return Key{}, false
}

// Memoize returns the cached table for key, calling load on a miss. Failed
// loads are not cached.
func (c *Cache) Memoize(ctx context.Context, key Key, load func(context.Context) (Table, error)) (Table, error) {
	if t, ok := c.entries.Get(key); ok {
		c.metrics.observeCache(CacheHit)
		return t, nil
	}
	c.metrics.observeCache(CacheMiss)

	t, err := load(ctx)
	if err != nil {
		return Table{}, err
	}
	c.entries.Add(key, t)
	return t, nil
}

// Len returns the number of cached tables.
func (c *Cache) Len() int { return c.entries.Len() }

// Purge drops every entry.
func (c *Cache) Purge() { c.entries.Purge() }

// EvictPath drops every entry read from path.
func (c *Cache) EvictPath(path string) int {
	abs := absPath(path)
	n := 0
	for _, k := range c.entries.Keys() {
		if k.ModTime.IsZero() {
			continue
		}
		if p, ok := keyPath(k); ok && absPath(p) == abs {
			if c.entries.Remove(k) {
				n++
				c.metrics.observeCache(CacheEvict)
			}
		}
	}
	return n
}

// keyPath recovers the file path from a file key identity "kind:path#variant".
func keyPath(k Key) (string, bool) {
	kind, rest, ok := strings.Cut(k.Identity, ":")
	if !ok || !(Source{Kind: SourceKind(kind)}).IsFile() {
		return "", false
	}
	if i := strings.LastIndex(rest, "#"); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Watch evicts entries whose file is written, removed or renamed, until ctx
// is done. Directories are watched so files created later are covered too.
func (c *Cache) Watch(ctx context.Context, paths ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		dir := p
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			dir = filepath.Dir(p)
		}
		dirs[absPath(dir)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) &&
					!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Create) {
					continue
				}
				if n := c.EvictPath(ev.Name); n > 0 {
					c.logger.Debug("cache entries evicted",
						slog.String("path", ev.Name),
						slog.Int("entries", n),
					)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.logger.Warn("file watcher error", slog.String("error", err.Error()))
			}
		}
	}()
	return nil
}
