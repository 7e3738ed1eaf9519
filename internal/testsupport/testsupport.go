// Package testsupport provides shared fixtures for dpcretl tests: temp-dir
// configs and synthetic instrument workbooks.
package testsupport

import (
	"path/filepath"
	"testing"

	"dpcretl/internal/config"
)

// NewConfig returns a Config rooted in fresh temp directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(base, "inputs")
	cfg.Paths.OutputDir = filepath.Join(base, "runs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
