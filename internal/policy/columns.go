// Package policy defines which columns of the transfer table are visible and
// writable to callers. The tables here are built once at init and never
// mutated; query projection and write filtering both consult them.
package policy

import (
	"fmt"

	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// readAllowed is the ordered allow-list of app-readable columns. Order is
// significant: it is the column order of the default projection.
var readAllowed = []string{
	transfer.ColID,
	transfer.ColAppData,
	transfer.ColLocalPath,
	transfer.ColMimeType,
	transfer.ColVisibility,
	transfer.ColDestination,
	transfer.ColControl,
	transfer.ColStatus,
	transfer.ColLastModification,
	transfer.ColNotificationPackage,
	transfer.ColNotificationClass,
	transfer.ColTotalBytes,
	transfer.ColCurrentBytes,
	transfer.ColTitle,
	transfer.ColDescription,
}

var readAllowedSet = toSet(readAllowed)

// createWritable are the columns a non-privileged caller may supply at
// creation. Destination and the notification target are additionally
// validated by the CRUD engine before being copied.
var createWritable = toSet([]string{
	transfer.ColURI,
	transfer.ColAppData,
	transfer.ColNoIntegrity,
	transfer.ColFileNameHint,
	transfer.ColMimeType,
	transfer.ColDestination,
	transfer.ColVisibility,
	transfer.ColControl,
	transfer.ColNotificationExtras,
	transfer.ColCookieData,
	transfer.ColUserAgent,
	transfer.ColReferer,
	transfer.ColTitle,
	transfer.ColDescription,
})

// updateSafe are the columns a cross-process, non-privileged caller may
// change after creation. Everything else is silently not copied.
var updateSafe = toSet([]string{
	transfer.ColAppData,
	transfer.ColVisibility,
	transfer.ColControl,
	transfer.ColTitle,
	transfer.ColDescription,
})

// privileged columns require an elevated permission to write. They are never
// an error to supply without it; the value is simply not copied.
var privileged = toSet([]string{
	transfer.ColOtherUID,
	transfer.ColLocalPath,
})

func toSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// ReadColumns returns a copy of the ordered read allow-list.
func ReadColumns() []string {
	cols := make([]string, len(readAllowed))
	copy(cols, readAllowed)
	return cols
}

// DefaultProjection is the projection substituted when a caller supplies
// none: the full allow-list minus the local storage path, which is exposed
// only to callers that ask for it explicitly.
func DefaultProjection() []string {
	cols := make([]string, 0, len(readAllowed)-1)
	for _, c := range readAllowed {
		if c == transfer.ColLocalPath {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// ValidateProjection checks an explicit projection against the read
// allow-list. Unknown or disallowed columns reject the whole request rather
// than being silently dropped.
func ValidateProjection(projection []string) error {
	for _, col := range projection {
		if !readAllowedSet[col] {
			return fmt.Errorf("column %q is not allowed in queries", col)
		}
	}
	return nil
}

// Readable reports whether a single column is app-readable.
func Readable(col string) bool {
	return readAllowedSet[col]
}

// CreateWritable reports whether a caller may supply col at creation without
// elevated permissions.
func CreateWritable(col string) bool {
	return createWritable[col]
}

// UpdateSafe reports whether a cross-process caller may change col.
func UpdateSafe(col string) bool {
	return updateSafe[col]
}

// Privileged reports whether writing col requires an elevated permission.
func Privileged(col string) bool {
	return privileged[col]
}
