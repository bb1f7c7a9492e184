package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshears713/Research-Body/internal/crawl"
)

func TestCrawlCommand_MissingSeedFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "crawl", "--topic", "quantum computing")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"seed\" not set")
}

func TestCrawlCommand_MissingTopicFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "crawl", "--seed", "https://example.com")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"topic\" not set")
}

func TestCrawlCommand_UnfetchableSeed(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	// Nothing listens on port 1, so the crawler retries and gives up
	// without leaving the machine.
	cmd := exec.Command(binaryPath, "crawl",
		"--seed", "http://127.0.0.1:1/unreachable",
		"--topic", "quantum computing",
		"--max-pages", "1")
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "an empty crawl is not a command failure: %s", string(output))
	assert.Contains(t, string(output), "CRAWL DECISIONS")
	assert.Contains(t, string(output), "Crawled 0 pages")
}

func TestCrawlCommand_WritesOutputFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	outputDir := filepath.Join(tmpDir, "crawl")

	cmd := exec.Command(binaryPath, "crawl",
		"--seed", "http://127.0.0.1:1/unreachable",
		"--topic", "quantum computing",
		"--max-pages", "1",
		"--out", outputDir)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "command should succeed: %s", string(output))
	assert.Contains(t, string(output), "Pages: ")
	assert.Contains(t, string(output), "Decisions: ")

	decisionsContent, err := os.ReadFile(filepath.Join(outputDir, "decisions.json"))
	require.NoError(t, err)

	var decisions []crawl.Decision
	require.NoError(t, json.Unmarshal(decisionsContent, &decisions))
	assert.NotEmpty(t, decisions, "decision trail should record the give-up")

	_, err = os.Stat(filepath.Join(outputDir, "pages.json"))
	assert.NoError(t, err, "pages file should exist even when empty")
}
