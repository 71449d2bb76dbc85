// Package support holds the godog step definitions for the framescan
// integration suite. Commands run in-process against the real CLI tree and
// the HTTP server runs on httptest with the real barcode engine.
package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand string
	LastOutput  string
	LastError   error

	// Test environment
	TempDir string

	// Server state
	Server             *httptest.Server
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a scenario context with its own temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "framescan-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{TempDir: tempDir, LastHTTPHeaders: map[string]string{}}, nil
}

// Cleanup stops the server and removes the scenario's files.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.Server != nil {
		testCtx.Server.Close()
		testCtx.Server = nil
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// path resolves a frame name inside the scenario directory.
func (testCtx *TestContext) path(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}

// expand replaces {dir} in step arguments with the scenario directory.
func (testCtx *TestContext) expand(s string) string {
	return strings.ReplaceAll(s, "{dir}", testCtx.TempDir)
}
