package guides

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/ports"
)

// defaultCacheTTL is how long a cached archive is considered fresh.
const defaultCacheTTL = 24 * time.Hour

// Fetcher downloads the guides metadata archive and unpacks it into a
// workspace directory.
type Fetcher struct {
	client *http.Client
	log    ports.Logger
}

// NewFetcher returns a Fetcher that reports non-fatal problems on the given
// logger.
func NewFetcher(log ports.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		log:    log,
	}
}

// Fetch downloads the metadata archive described by settings and unpacks it
// into dir. With a cache directory configured, a previously downloaded
// archive is reused while fresh, and a stale one serves as a fallback when
// the download fails.
func (f *Fetcher) Fetch(ctx context.Context, dir string, settings config.GuidesSettings) error {
	data, err := f.archive(ctx, settings)
	if err != nil {
		return &FetchError{URL: settings.MetadataURL, Err: err}
	}
	if err := unpack(data, dir); err != nil {
		return &FetchError{URL: settings.MetadataURL, Err: err}
	}
	if _, err := os.Stat(filepath.Join(dir, settings.DirPrefix)); err != nil {
		return &FetchError{
			URL: settings.MetadataURL,
			Err: fmt.Errorf("archive does not contain directory %q", settings.DirPrefix),
		}
	}
	return nil
}

func (f *Fetcher) archive(ctx context.Context, settings config.GuidesSettings) ([]byte, error) {
	cachePath := ""
	if settings.CacheDir != "" {
		cachePath = filepath.Join(settings.CacheDir, cacheKey(settings.MetadataURL)+".zip")
		if isCacheValid(cachePath, defaultCacheTTL) {
			return os.ReadFile(cachePath)
		}
	}

	data, err := f.download(ctx, settings)
	if err != nil {
		// A stale archive is still good enough for validating references.
		if cachePath != "" {
			if stale, readErr := os.ReadFile(cachePath); readErr == nil {
				f.log.Warn(ctx, "using stale guides archive after failed download",
					ports.F("error", err))
				return stale, nil
			}
		}
		return nil, err
	}

	if settings.Integrity != "" {
		hash := sha256.Sum256(data)
		actual := hex.EncodeToString(hash[:])
		if !strings.EqualFold(actual, settings.Integrity) {
			return nil, fmt.Errorf("integrity check failed (expected %s, got %s)",
				settings.Integrity, actual)
		}
	}

	if cachePath != "" {
		if err := saveToCache(cachePath, data); err != nil {
			f.log.Warn(ctx, "failed to cache guides archive", ports.F("error", err))
		}
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, settings config.GuidesSettings) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, settings.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, settings.MetadataURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:16])
}

func isCacheValid(path string, ttl time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < ttl
}

func saveToCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func unpack(data []byte, dir string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	root := filepath.Clean(dir)
	for _, file := range reader.File {
		dest := filepath.Join(root, file.Name)
		if !strings.HasPrefix(dest, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the workspace", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := writeEntry(file, dest); err != nil {
			return fmt.Errorf("unpacking %s: %w", file.Name, err)
		}
	}
	return nil
}

func writeEntry(file *zip.File, dest string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
