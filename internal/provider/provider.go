// Package provider implements the access-controlled CRUD engine over the
// transfer table and its request-header sub-resource. It is a stateless
// request handler: the transport layer resolves a verified caller identity
// and invokes the operation entry points directly; all collaborators (store,
// clock, notifier, work trigger, path validation, package ownership) are
// injected at construction.
package provider

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/store"
)

// Clock supplies the server timestamp stamped onto rows. Injected so tests
// control last-modification values.
type Clock interface {
	NowMillis() int64
}

// SystemClock is the wall clock.
type SystemClock struct{}

// NowMillis returns the current time in epoch milliseconds.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// PathValidator decides whether a stored local path is safe to open. The
// real validation lives outside this layer; the default accepts only clean
// absolute paths.
type PathValidator func(path string) bool

// DefaultPathValidator rejects relative and non-canonical paths.
func DefaultPathValidator(path string) bool {
	return filepath.IsAbs(path) && path == filepath.Clean(path)
}

// OwnerResolver reports the owner identity of a named package, used to
// validate a caller-supplied notification target. ok is false when the
// package is unknown.
type OwnerResolver interface {
	OwnerUID(pkg string) (uid int64, ok bool)
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(pkg string) (int64, bool)

func (f OwnerResolverFunc) OwnerUID(pkg string) (int64, bool) {
	return f(pkg)
}

// Deps are the collaborators a Provider needs. Zero values get safe
// defaults: wall clock, discarded notifications, deny-all owner resolution,
// DefaultPathValidator.
type Deps struct {
	Scoper    access.Scoper
	Clock     Clock
	Notifier  notify.ChangeNotifier
	Trigger   notify.WorkTrigger
	ValidPath PathValidator
	Owners    OwnerResolver
	Logger    *slog.Logger
}

// Provider is the CRUD engine. One instance per process; safe for
// concurrent use, with each request handled as an independent synchronous
// unit of work.
type Provider struct {
	st        *store.Store
	scoper    access.Scoper
	clock     Clock
	notifier  notify.ChangeNotifier
	trigger   notify.WorkTrigger
	validPath PathValidator
	owners    OwnerResolver
	logger    *slog.Logger
}

// New creates a Provider over an open store.
func New(st *store.Store, deps Deps) *Provider {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard{}
	}
	if deps.Trigger == nil {
		deps.Trigger = notify.Discard{}
	}
	if deps.ValidPath == nil {
		deps.ValidPath = DefaultPathValidator
	}
	if deps.Owners == nil {
		deps.Owners = OwnerResolverFunc(func(string) (int64, bool) { return 0, false })
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Provider{
		st:        st,
		scoper:    deps.Scoper,
		clock:     deps.Clock,
		notifier:  deps.Notifier,
		trigger:   deps.Trigger,
		validPath: deps.ValidPath,
		owners:    deps.Owners,
		logger:    deps.Logger,
	}
}
