package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against a temp database and returns stdout.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append(args, "--db", dbPath, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := cmd.Execute()
	return buf.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	out, err := execute(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 101")
}

func TestMigrateCommand_JSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	out, err := execute(t, dbPath, "migrate", "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(101), data["version"])
}

func TestAddAndListRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	out, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin", "--title", "A")
	require.NoError(t, err)
	addr := strings.TrimSpace(out)
	assert.Equal(t, "transfers/1", addr)

	out, err = execute(t, dbPath, "list", "--columns", "id,title,status")
	require.NoError(t, err)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "190", "new transfers are pending")
}

func TestAddWithHeaders(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin",
		"--header", "Authorization: Bearer abc",
		"--header", "Accept: application/json")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "headers", "1")
	require.NoError(t, err)
	assert.Equal(t, "Authorization: Bearer abc\nAccept: application/json\n", out)
}

func TestAddRejectsMalformedHeader(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin",
		"--header", "NoColon")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestPauseResumeAndRemove(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "pause", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "paused")

	out, err = execute(t, dbPath, "list", "--columns", "id,control")
	require.NoError(t, err)
	assert.Contains(t, out, "1")

	out, err = execute(t, dbPath, "resume", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "resumed")

	out, err = execute(t, dbPath, "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1")

	_, err = execute(t, dbPath, "pause", "1")
	require.Error(t, err, "a deleted transfer cannot be paused")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRemoveRequiresTarget(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "rm")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRemoveByFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin", "--title", "old")
	require.NoError(t, err)
	_, err = execute(t, dbPath, "add", "--uri", "https://example.com/b.bin", "--title", "old")
	require.NoError(t, err)
	_, err = execute(t, dbPath, "add", "--uri", "https://example.com/c.bin", "--title", "new")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "rm", "--filter", "title = 'old'")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 2")
}

func TestListRejectsUnreadableColumns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "list", "--columns", "cookie_data")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestScopedFlagAppliesVisibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")

	_, err := execute(t, dbPath, "add", "--uri", "https://example.com/a.bin", "--uid", "10001")
	require.NoError(t, err)

	// A scoped caller with a different uid sees nothing. The configured
	// system uid is 1000, so 4242 is an ordinary caller.
	out, err := execute(t, dbPath, "list", "--columns", "id", "--scoped", "--uid", "4242")
	require.NoError(t, err)
	assert.NotContains(t, out, "\n1\n")

	out, err = execute(t, dbPath, "list", "--columns", "id", "--scoped", "--uid", "10001")
	require.NoError(t, err)
	assert.Contains(t, out, "1")
}
