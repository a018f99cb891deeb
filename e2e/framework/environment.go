//go:build e2e

// Package framework provides the E2E test infrastructure for declarr.
package framework

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// Environment represents an isolated test environment for E2E tests.
type Environment struct {
	t          *testing.T
	rootDir    string
	configDir  string
	binaryPath string
	extraEnv   []string
}

var (
	buildOnce   sync.Once
	binaryPath  string
	buildErr    error
	projectRoot string
)

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the declarr binary once per test run. The DECLARR_BINARY
// environment variable skips the build and uses an existing binary instead.
func buildBinary(t *testing.T) (string, error) {
	if path := os.Getenv("DECLARR_BINARY"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	buildOnce.Do(func() {
		projectRoot, buildErr = findProjectRoot()
		if buildErr != nil {
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "declarr-e2e-test")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/declarr")
		cmd.Dir = projectRoot

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
			return
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	rootDir := t.TempDir()
	configDir := filepath.Join(rootDir, "config")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}

	return &Environment{
		t:          t,
		rootDir:    rootDir,
		configDir:  configDir,
		binaryPath: binary,
	}
}

// ConfigDir returns the path to the config directory. Commands run with it
// as their working directory, so a bare "validate" picks up declarr.yaml
// from there.
func (e *Environment) ConfigDir() string {
	return e.configDir
}

// RootDir returns the path to the test root directory.
func (e *Environment) RootDir() string {
	return e.rootDir
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// SetEnv adds an environment variable for commands run in this environment.
// Used to test ${VAR} expansion in configuration values.
func (e *Environment) SetEnv(key, value string) {
	e.extraEnv = append(e.extraEnv, key+"="+value)
}

// ExtraEnv returns the environment variables added with SetEnv.
func (e *Environment) ExtraEnv() []string {
	return e.extraEnv
}

// WriteConfig writes a declarr.yaml config file and returns its path.
func (e *Environment) WriteConfig(content string) string {
	e.t.Helper()

	configPath := filepath.Join(e.configDir, "declarr.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}

// WriteFile writes content to a file in the test environment.
func (e *Environment) WriteFile(path, content string) string {
	e.t.Helper()

	fullPath := filepath.Join(e.rootDir, path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

// FileExists checks if a file exists in the test environment.
func (e *Environment) FileExists(path string) bool {
	_, err := os.Stat(filepath.Join(e.rootDir, path))
	return err == nil
}
