package provider

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// payloadFile writes a payload on disk and records its path on the row the
// way the worker does when a transfer completes.
func payloadFile(t *testing.T, e *env, addr, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	worker := access.SameProcessCaller(testSystemUID)
	_, err := e.p.Update(context.Background(), addr, worker, transfer.Fields{
		transfer.ColLocalPath: path,
		transfer.ColStatus:    int64(transfer.StatusSuccess),
	}, "", nil)
	require.NoError(t, err)
	return path
}

func TestOpenContent_ReadsPayload(t *testing.T) {
	e := newEnv(t)
	addr := e.create(t, appCaller, transfer.Fields{})
	payloadFile(t, e, addr, "hello payload")

	f, err := e.p.OpenContent(context.Background(), addr, appCaller, "r")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello payload", string(data))
}

func TestOpenContent_RejectsWriteModes(t *testing.T) {
	e := newEnv(t)
	addr := e.create(t, appCaller, transfer.Fields{})

	for _, mode := range []string{"w", "rw", "a", ""} {
		_, err := e.p.OpenContent(context.Background(), addr, appCaller, mode)
		assert.True(t, HasCode(err, CodeBadOpenMode), "mode %q", mode)
	}
}

func TestOpenContent_ZeroMatchesIsNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.p.OpenContent(context.Background(), "transfers/404", appCaller, "r")
	assert.True(t, IsNotFound(err))

	// A row the caller cannot see reads the same as one that does not exist.
	addr := e.create(t, otherCaller, transfer.Fields{})
	payloadFile(t, e, addr, "secret")
	_, err = e.p.OpenContent(context.Background(), addr, appCaller, "r")
	assert.True(t, IsNotFound(err))
}

func TestOpenContent_MultipleMatchesIsAmbiguous(t *testing.T) {
	e := newEnv(t)
	a := e.create(t, appCaller, transfer.Fields{})
	b := e.create(t, appCaller, transfer.Fields{})
	payloadFile(t, e, a, "one")
	payloadFile(t, e, b, "two")

	_, err := e.p.OpenContent(context.Background(), "transfers", appCaller, "r")
	assert.True(t, HasCode(err, CodeAmbiguous))
}

func TestOpenContent_NoPayloadYetIsNotFound(t *testing.T) {
	e := newEnv(t)
	addr := e.create(t, appCaller, transfer.Fields{})

	_, err := e.p.OpenContent(context.Background(), addr, appCaller, "r")
	assert.True(t, IsNotFound(err), "a pending transfer has no payload file")
}

func TestOpenContent_InvalidStoredPathIsRejected(t *testing.T) {
	e := newEnv(t)
	addr := e.create(t, appCaller, transfer.Fields{})

	worker := access.SameProcessCaller(testSystemUID)
	_, err := e.p.Update(context.Background(), addr, worker, transfer.Fields{
		transfer.ColLocalPath: "relative/escape.bin",
		transfer.ColTitle:     "x",
	}, "", nil)
	require.NoError(t, err)

	_, err = e.p.OpenContent(context.Background(), addr, appCaller, "r")
	assert.True(t, HasCode(err, CodeBadPath))
}

func TestOpenContent_MissingFileIsNotFound(t *testing.T) {
	e := newEnv(t)
	addr := e.create(t, appCaller, transfer.Fields{})
	path := payloadFile(t, e, addr, "soon gone")
	require.NoError(t, os.Remove(path))

	_, err := e.p.OpenContent(context.Background(), addr, appCaller, "r")
	assert.True(t, IsNotFound(err))
}

func TestOpenContent_StampsAccessTimeForTrustedCallers(t *testing.T) {
	e := newEnv(t)
	worker := access.SameProcessCaller(testSystemUID)
	addr := e.create(t, worker, transfer.Fields{})
	id := idFromAddress(t, addr)
	payloadFile(t, e, addr, "x")

	e.clock.Advance(5_000)
	f, err := e.p.OpenContent(context.Background(), addr, worker, "r")
	require.NoError(t, err)
	f.Close()

	assert.Equal(t, int64(1_700_000_005_000), e.dbInt(t, transfer.ColLastModification, id))
}
