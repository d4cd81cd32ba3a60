package access

import (
	"fmt"

	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// Predicate is a parameterized SQL fragment. Values are never interpolated;
// the fragment carries ? placeholders and Args in matching order.
type Predicate struct {
	SQL  string
	Args []any
}

// Scoper decides whether a caller's operations must be restricted to rows it
// owns, and builds the restriction predicate. SystemUID and HelperUID are
// the privileged system identity and the designated trusted helper.
type Scoper struct {
	SystemUID int64
	HelperUID int64
}

// NeedsRestriction is true unless the caller is the same process, the system
// identity, or the trusted helper.
func (s Scoper) NeedsRestriction(c Caller) bool {
	return !c.SameProcess && c.UID != s.SystemUID && c.UID != s.HelperUID
}

// ScopePredicate builds the visibility predicate for a restricted caller:
// rows owned or co-owned by the caller, OR'd with external-destination rows
// when canSeeAllExternal is set. The broadening is granted only when the
// caller holds the see-all-external permission AND its projection excludes
// the local path; computing that flag is the query layer's job.
//
// The predicate is conjoined with any caller-supplied filter and with the
// targeting of updates and deletes, so a crafted filter or id cannot reach
// rows outside the caller's scope.
func (s Scoper) ScopePredicate(c Caller, canSeeAllExternal bool) Predicate {
	owned := fmt.Sprintf("(%s = ? OR %s = ?)", transfer.ColUID, transfer.ColOtherUID)
	args := []any{c.UID, c.UID}
	if canSeeAllExternal {
		return Predicate{
			SQL:  fmt.Sprintf("(%s OR %s = ?)", owned, transfer.ColDestination),
			Args: append(args, int64(transfer.DestinationExternal)),
		}
	}
	return Predicate{SQL: owned, Args: args}
}
