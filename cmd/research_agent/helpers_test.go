package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the research_agent binary for CLI tests
func getBinaryPath(t *testing.T) string {
	binaryName := "research_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/research_agent ./cmd/research_agent'", binaryPath)
	}

	return binaryPath
}

// unsetEnvForTest clears an environment variable for the duration of a test
func unsetEnvForTest(t *testing.T, key string) {
	oldValue, wasSet := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if wasSet {
			_ = os.Setenv(key, oldValue)
		}
	})
}
