package commands_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bote/internal/commands"
	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store/filestore"
)

// runBote executes the CLI in-process and returns its combined output.
func runBote(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// mustRun fails the test when the command fails.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runBote(t, args...)
	require.NoError(t, err, out)
	return out
}

// newProject initializes a project without git and returns its directory.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("BOTE_MONGO_URI", "")
	t.Setenv("BOTE_LOG_LEVEL", "")
	dir := t.TempDir()
	mustRun(t, "init", dir, "--name", "El Bote", "--no-git")
	return dir
}

func listTransactions(t *testing.T, dir string) []model.Transaction {
	t.Helper()
	txs, err := filestore.New(dir).ListTransactions(context.Background())
	require.NoError(t, err)
	return txs
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}
