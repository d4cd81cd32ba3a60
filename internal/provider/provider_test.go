package provider

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/store"
	"github.com/micahjlucas/TransferProvider/internal/testutil"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

const (
	testSystemUID = int64(1000)
	testHelperUID = int64(2000)
	testAppUID    = int64(10001)
	testOtherUID  = int64(10002)
)

var (
	appCaller   = access.Caller{UID: testAppUID}
	otherCaller = access.Caller{UID: testOtherUID}
	sysCaller   = access.Caller{UID: testSystemUID}
)

type fakeTrigger struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakeTrigger) StartWork(_ context.Context, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
}

func (f *fakeTrigger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) NotifyChange(_ context.Context, ev notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeNotifier) last(t *testing.T) notify.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.events, "expected at least one change event")
	return f.events[len(f.events)-1]
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type env struct {
	p        *Provider
	st       *store.Store
	clock    *testutil.FakeClock
	trigger  *fakeTrigger
	notifier *fakeNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.OpenWithLogger(filepath.Join(t.TempDir(), "transfers.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	e := &env{
		st:       st,
		clock:    testutil.NewFakeClock(1_700_000_000_000),
		trigger:  &fakeTrigger{},
		notifier: &fakeNotifier{},
	}
	e.p = New(st, Deps{
		Scoper:   access.Scoper{SystemUID: testSystemUID, HelperUID: testHelperUID},
		Clock:    e.clock,
		Notifier: e.notifier,
		Trigger:  e.trigger,
		Owners: OwnerResolverFunc(func(pkg string) (int64, bool) {
			if pkg == "com.example.app" {
				return testAppUID, true
			}
			return 0, false
		}),
		Logger: logger,
	})
	return e
}

func (e *env) create(t *testing.T, caller access.Caller, fields transfer.Fields) string {
	t.Helper()
	addr, err := e.p.Create(context.Background(), "transfers", caller, fields)
	require.NoError(t, err)
	return addr
}

// dbInt reads one integer column straight from storage, bypassing the read
// policy, for asserting server-stamped values. NULL reads as zero.
func (e *env) dbInt(t *testing.T, col string, id int64) int64 {
	t.Helper()
	var v sql.NullInt64
	err := e.st.DB().QueryRow("SELECT "+col+" FROM transfers WHERE id = ?", id).Scan(&v)
	require.NoError(t, err)
	return v.Int64
}

func idFromAddress(t *testing.T, addr string) int64 {
	t.Helper()
	parts := strings.Split(addr, "/")
	require.Len(t, parts, 2)
	id, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	return id
}

func TestCreate_StampsServerControlledFields(t *testing.T) {
	e := newEnv(t)

	addr := e.create(t, appCaller, transfer.Fields{
		transfer.ColURI: "https://example.com/a.bin",
		// Server-controlled values in the input must be ignored.
		transfer.ColStatus:           int64(transfer.StatusSuccess),
		transfer.ColCurrentBytes:     int64(999),
		transfer.ColLastModification: int64(1),
	})
	id := idFromAddress(t, addr)

	assert.Equal(t, int64(transfer.StatusPending), e.dbInt(t, transfer.ColStatus, id))
	assert.Equal(t, int64(1_700_000_000_000), e.dbInt(t, transfer.ColLastModification, id))
	assert.Equal(t, testAppUID, e.dbInt(t, transfer.ColUID, id))
}

func TestCreate_RejectsNonCollectionAddress(t *testing.T) {
	e := newEnv(t)

	for _, addr := range []string{"transfers/1", "transfers/1/headers", "bogus", ""} {
		_, err := e.p.Create(context.Background(), addr, appCaller, transfer.Fields{})
		assert.True(t, HasCode(err, CodeBadAddress), "address %q", addr)
	}
}

func TestCreate_VisibilityDefaults(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		fields transfer.Fields
		want   transfer.Visibility
	}{
		{
			name:   "external destination notifies on completion",
			fields: transfer.Fields{transfer.ColDestination: int64(transfer.DestinationExternal)},
			want:   transfer.VisibilityNotifyCompleted,
		},
		{
			name:   "cache destination is hidden",
			fields: transfer.Fields{transfer.ColDestination: int64(transfer.DestinationCachePurgeable)},
			want:   transfer.VisibilityHidden,
		},
		{
			name:   "no destination is hidden",
			fields: transfer.Fields{},
			want:   transfer.VisibilityHidden,
		},
		{
			name: "explicit visibility wins",
			fields: transfer.Fields{
				transfer.ColDestination: int64(transfer.DestinationExternal),
				transfer.ColVisibility:  int64(transfer.VisibilityVisible),
			},
			want: transfer.VisibilityVisible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := idFromAddress(t, e.create(t, appCaller, tt.fields))
			assert.Equal(t, int64(tt.want), e.dbInt(t, transfer.ColVisibility, id))
		})
	}
}

func TestCreate_DestinationGating(t *testing.T) {
	e := newEnv(t)

	_, err := e.p.Create(context.Background(), "transfers", appCaller, transfer.Fields{
		transfer.ColDestination: int64(transfer.DestinationCache),
	})
	assert.True(t, IsUnauthorized(err), "plain caller must not pick internal cache")

	_, err = e.p.Create(context.Background(), "transfers", appCaller, transfer.Fields{
		transfer.ColDestination: int64(transfer.DestinationFileURI),
	})
	assert.True(t, IsUnauthorized(err), "file URI needs the storage write permission")

	writer := access.Caller{UID: testAppUID, Permissions: []access.Permission{access.PermWriteExternalStorage}}
	_, err = e.p.Create(context.Background(), "transfers", writer, transfer.Fields{
		transfer.ColDestination: int64(transfer.DestinationFileURI),
	})
	assert.NoError(t, err)

	advanced := access.Caller{UID: testAppUID, Permissions: []access.Permission{access.PermAccessAdvanced}}
	addr, err := e.p.Create(context.Background(), "transfers", advanced, transfer.Fields{
		transfer.ColDestination: int64(transfer.DestinationCacheNoRoaming),
	})
	require.NoError(t, err)
	id := idFromAddress(t, addr)
	assert.Equal(t, int64(transfer.DestinationCacheNoRoaming), e.dbInt(t, transfer.ColDestination, id))
}

func TestCreate_SecondaryOwnerNeedsAdvancedAccess(t *testing.T) {
	e := newEnv(t)

	id := idFromAddress(t, e.create(t, appCaller, transfer.Fields{
		transfer.ColOtherUID: testOtherUID,
	}))
	assert.Equal(t, int64(0), e.dbInt(t, transfer.ColOtherUID, id), "other_uid must be dropped without advanced access")

	advanced := access.Caller{UID: testAppUID, Permissions: []access.Permission{access.PermAccessAdvanced}}
	id = idFromAddress(t, e.create(t, advanced, transfer.Fields{
		transfer.ColOtherUID: testOtherUID,
	}))
	assert.Equal(t, testOtherUID, e.dbInt(t, transfer.ColOtherUID, id))
}

func TestCreate_OwnerOverrideOnlyForSystem(t *testing.T) {
	e := newEnv(t)

	id := idFromAddress(t, e.create(t, appCaller, transfer.Fields{transfer.ColUID: int64(42)}))
	assert.Equal(t, testAppUID, e.dbInt(t, transfer.ColUID, id))

	id = idFromAddress(t, e.create(t, sysCaller, transfer.Fields{transfer.ColUID: int64(42)}))
	assert.Equal(t, int64(42), e.dbInt(t, transfer.ColUID, id))
}

func TestCreate_NotificationTargetOwnership(t *testing.T) {
	e := newEnv(t)
	target := transfer.Fields{
		transfer.ColURI:                 "https://example.com/a.bin",
		transfer.ColNotificationPackage: "com.example.app",
		transfer.ColNotificationClass:   "Receiver",
	}

	// The app owns com.example.app, so the target is kept.
	addr := e.create(t, appCaller, target)
	rs, err := e.p.Query(context.Background(), addr, appCaller, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "com.example.app", rs.Rows[0][transfer.ColNotificationPackage])

	// A different caller naming someone else's package gets it dropped.
	addr = e.create(t, otherCaller, target)
	rs, err = e.p.Query(context.Background(), addr, otherCaller, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Nil(t, rs.Rows[0][transfer.ColNotificationPackage])

	// The system identity may target any package.
	addr = e.create(t, sysCaller, target)
	rs, err = e.p.Query(context.Background(), addr, sysCaller, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "com.example.app", rs.Rows[0][transfer.ColNotificationPackage])
}

func TestCreate_FiresTriggerAndNotifiesOnce(t *testing.T) {
	e := newEnv(t)

	e.create(t, appCaller, transfer.Fields{transfer.ColURI: "https://example.com/a.bin"})

	assert.Equal(t, 1, e.trigger.count(), "create must raise exactly one work signal")
	assert.Equal(t, 1, e.notifier.count())
	ev := e.notifier.last(t)
	assert.Equal(t, notify.OpCreate, ev.Op)
	assert.Equal(t, "transfers", ev.Address)
}

func TestCreate_RejectedRequestWritesNothing(t *testing.T) {
	e := newEnv(t)

	_, err := e.p.Create(context.Background(), "transfers", appCaller, transfer.Fields{
		transfer.ColDestination: int64(transfer.DestinationCache),
	})
	require.Error(t, err)

	var n int
	require.NoError(t, e.st.DB().QueryRow("SELECT COUNT(*) FROM transfers").Scan(&n))
	assert.Zero(t, n)
	assert.Zero(t, e.trigger.count())
	assert.Zero(t, e.notifier.count())
}
