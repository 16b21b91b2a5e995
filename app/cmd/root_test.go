package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	workspace = ""
	cfgFile = ""
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--workspace", t.TempDir()}, args...))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestAgentsListsHandlerPool(t *testing.T) {
	out := runCLI(t, "agents")
	require.Equal(t, []string{"coder", "researcher", "reviewer"},
		strings.Fields(out))
}

func TestRunProducesReport(t *testing.T) {
	out := runCLI(t, "run", "check", "my", "jira", "tasks")
	require.Contains(t, out, "## Task Summary")
	require.Contains(t, out, "### Step 1:")
	require.Contains(t, out, "[Researcher] Gathered information for:")
}

func TestRunWithLogDumpsMessages(t *testing.T) {
	out := runCLI(t, "run", "--log", "check email")
	require.Contains(t, out, "[task]")
	require.Contains(t, out, "[result]")
	require.Contains(t, out, "router -> researcher")
}

func TestHistoryEmptyStore(t *testing.T) {
	out := runCLI(t, "history")
	require.Contains(t, out, "No snapshots recorded yet.")
}

func TestCollectWritesArtifacts(t *testing.T) {
	out := runCLI(t, "collect", "--no-archive")
	require.Contains(t, out, "Collected 0 tasks and 0 emails")
	require.Contains(t, out, "context_payload.json")
	require.Contains(t, out, "daily_context.md")
}
