package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// unsafePathChars matches characters that cannot appear in a cache file name.
var unsafePathChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// Cache stores downloaded documents under a local directory, keyed by a
// sanitized source name, so re-running ingestion does not re-fetch every PDF.
type Cache struct {
	dir string
}

// NewCache creates a Cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return &Cache{dir: dir}, nil
}

// SanitizeName replaces filesystem-hostile characters in a source name with
// underscores.
func SanitizeName(name string) string {
	return unsafePathChars.ReplaceAllString(name, "_")
}

// Path returns the cache path for a source name and extension.
func (c *Cache) Path(name, ext string) string {
	return filepath.Join(c.dir, SanitizeName(name)+ext)
}

// Fetch downloads url to the cache entry for name unless it is already
// present. Returns the local path and whether the entry was served from cache.
func (c *Cache) Fetch(ctx context.Context, f Fetcher, url, name, ext string) (string, bool, error) {
	path := c.Path(name, ext)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		zap.L().Debug("cache: hit", zap.String("name", name), zap.String("path", path))
		return path, true, nil
	}

	n, err := f.DownloadToFile(ctx, url, path)
	if err != nil {
		// Remove a partial download so the next run retries it.
		_ = os.Remove(path)
		return "", false, eris.Wrapf(err, "cache: fetch %s", url)
	}

	zap.L().Debug("cache: stored",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return path, false, nil
}
