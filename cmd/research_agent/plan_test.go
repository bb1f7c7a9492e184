package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshears713/Research-Body/internal/mission"
)

func TestPlanCommand_MissingTopicFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "plan")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"topic\" not set")
}

func TestPlanCommand_UserSources(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "plan",
		"--topic", "quantum computing",
		"--source", "https://example.com/quantum",
		"--source", "https://example.org/computing")
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "command should succeed: %s", string(output))
	assert.Contains(t, string(output), "MISSION PLAN")
	assert.Contains(t, string(output), "https://example.com/quantum")
	assert.Contains(t, string(output), "https://example.org/computing")
}

func TestPlanCommand_HeuristicDiscovery(t *testing.T) {
	binaryPath := getBinaryPath(t)
	unsetEnvForTest(t, "GOOGLE_SEARCH_API_KEY")
	unsetEnvForTest(t, "GOOGLE_SEARCH_ENGINE_ID")

	cmd := exec.Command(binaryPath, "plan", "--topic", "quantum computing")
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "command should succeed: %s", string(output))
	assert.Contains(t, string(output), "MISSION PLAN")
	assert.Contains(t, string(output), "http", "plan should contain discovered URLs")
}

func TestPlanCommand_InvalidSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "plan",
		"--topic", "quantum computing",
		"--source", "not-a-valid-url")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "invalid request")
}

func TestPlanCommand_WritesPlanFile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	outputFile := filepath.Join(tmpDir, "plan.json")

	cmd := exec.Command(binaryPath, "plan",
		"--topic", "quantum computing",
		"--source", "https://example.com/quantum",
		"--out", outputFile)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "command should succeed: %s", string(output))
	assert.Contains(t, string(output), "Plan: ")

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var missionPlan mission.Plan
	require.NoError(t, json.Unmarshal(content, &missionPlan))
	assert.Equal(t, "quantum computing", missionPlan.Topic)
	assert.Contains(t, missionPlan.TargetURLs, "https://example.com/quantum")
	assert.NotEmpty(t, missionPlan.MissionID)
	assert.NotEmpty(t, missionPlan.Keywords)
}
