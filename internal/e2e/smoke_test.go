package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeWallet = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func TestSmokeFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the wa binary")
	}

	home := t.TempDir()
	binaryPath := buildBinary(t)

	steps := [][]string{
		{"session", "login", "--user", "smoke-user"},
		{"wallet", "add", smokeWallet},
		{"connect"},
		{"disconnect"},
	}
	for _, args := range steps {
		_, stderr, err := runWA(t, binaryPath, home, args...)
		require.NoError(t, err, "wa %v stderr: %s", args, stderr)
	}

	stdout, stderr, err := runWA(t, binaryPath, home, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "user: smoke-user")
	assert.Contains(t, stdout, "No wallet connected.")
	assert.Contains(t, stdout, "next connect: resume silently")
	assert.Contains(t, stdout, "last disconnect: just now")

	stdout, stderr, err = runWA(t, binaryPath, home, "connect")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Connected 0x71C7...976F")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "wa-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wa")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build wa binary: %s", string(output))
	return binaryPath
}

func runWA(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "WA_PROFILES_BACKEND=toml")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
