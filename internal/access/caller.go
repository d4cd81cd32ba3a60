// Package access decides whose rows a caller may see or touch. Identity is
// explicit: the transport layer resolves a verified Caller before invoking
// the store, and every operation receives it as a parameter.
package access

// Permission is an elevated capability a caller may hold.
type Permission string

const (
	// PermAccessAdvanced unlocks restricted destination classes and the
	// secondary-owner column.
	PermAccessAdvanced Permission = "access-advanced"

	// PermWriteExternalStorage is required to create a transfer with an
	// explicit file URI destination.
	PermWriteExternalStorage Permission = "write-external-storage"

	// PermSeeAllExternal broadens read visibility to every row with an
	// external destination, provided the projection excludes the local path.
	PermSeeAllExternal Permission = "see-all-external"
)

// Caller is a verified caller identity.
type Caller struct {
	// UID is the caller's owner identity, stamped onto rows it creates.
	UID int64

	// SameProcess is true when the call originates inside this process.
	// Same-process callers bypass visibility restriction and field filtering.
	SameProcess bool

	// Permissions are the elevated capabilities the caller holds.
	Permissions []Permission
}

// Has reports whether the caller holds p.
func (c Caller) Has(p Permission) bool {
	for _, held := range c.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// SameProcessCaller returns the identity used for in-process work: unscoped,
// all fields writable.
func SameProcessCaller(uid int64) Caller {
	return Caller{UID: uid, SameProcess: true}
}
