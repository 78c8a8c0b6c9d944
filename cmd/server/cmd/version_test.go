package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

func setBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func TestVersionCommand(t *testing.T) {
	setBuildInfo(t, "1.0.0", "abc123", "2026-10-01T12:00:00Z")

	output := runVersion(t, "version")
	for _, expected := range []string{
		"SBMS Academy Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-10-01T12:00:00Z",
		"Go version:",
		"Platform:",
	} {
		require.Contains(t, output, expected)
	}
}

func TestVersionCommandDefaultValues(t *testing.T) {
	setBuildInfo(t, "dev", "unknown", "unknown")

	output := runVersion(t, "version")
	require.Contains(t, output, "Version:    dev")
	require.Contains(t, output, "Git commit: unknown")
	require.Contains(t, output, "Build date: unknown")
}

func TestVersionCommandHelp(t *testing.T) {
	require.Contains(t, runVersion(t, "version", "--help"), "Print the version number")
}

// version must work with no DATABASE_URL or secrets in the environment.
func TestVersionCommandNoServerStart(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	setBuildInfo(t, "test", "test", "test")
	require.NotEmpty(t, runVersion(t, "version"))
}
