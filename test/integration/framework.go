// Package integration provides test utilities for validating complete
// configuration workflows through the application facade.
package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/declarr/internal/adapters/logging"
	"github.com/felixgeelhaar/declarr/internal/app"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// TestHarness provides utilities for integration testing.
type TestHarness struct {
	T       *testing.T
	TempDir string

	declarr *app.Declarr
}

// NewHarness creates a new test harness with a silent logger.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	return &TestHarness{
		T:       t,
		TempDir: t.TempDir(),
		declarr: app.New(app.WithLogger(logging.NewNopLogger())),
	}
}

// Declarr returns the application instance.
func (h *TestHarness) Declarr() *app.Declarr {
	return h.declarr
}

// CreateConfig writes a declarr.yaml in the temp directory and returns its
// path.
func (h *TestHarness) CreateConfig(content string) string {
	h.T.Helper()

	configPath := filepath.Join(h.TempDir, "declarr.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		h.T.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

// CacheDir creates a fresh cache directory for guides archives.
func (h *TestHarness) CacheDir() string {
	h.T.Helper()

	dir := filepath.Join(h.TempDir, "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.T.Fatalf("failed to create cache directory: %v", err)
	}
	return dir
}

// Validate runs the validation pipeline against the given configuration
// file.
func (h *TestHarness) Validate(configPath string, plugins ...manager.PluginName) (*app.ValidateResult, error) {
	return h.declarr.Validate(context.Background(), configPath, plugins)
}

// GuidesServer serves a guides metadata archive and counts downloads.
type GuidesServer struct {
	URL  string
	Hits int
}

// NewGuidesServer starts a test server serving a guides metadata archive
// built from the given files. Paths are relative to the archive's top-level
// directory named by prefix. The server shuts down when the test finishes.
func NewGuidesServer(t *testing.T, prefix string, files map[string]string) *GuidesServer {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := w.Create(prefix + "/" + name)
		if err != nil {
			t.Fatalf("failed to add archive entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("failed to write archive entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
	archive := buf.Bytes()

	gs := &GuidesServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		gs.Hits++
		_, _ = w.Write(archive)
	}))
	t.Cleanup(srv.Close)

	gs.URL = srv.URL
	return gs
}
