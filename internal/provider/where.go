package provider

import (
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// whereClause accumulates AND-conjoined predicate fragments with their
// positional arguments. Fragments are parenthesized by their producers;
// values travel only through args.
type whereClause struct {
	parts []string
	args  []any
}

func (w *whereClause) and(sql string, args ...any) {
	w.parts = append(w.parts, sql)
	w.args = append(w.args, args...)
}

// sql renders the conjunction, or "" when no fragment was added.
func (w *whereClause) sql() string {
	return strings.Join(w.parts, " AND ")
}

// effectiveWhere assembles the predicate every row-level operation runs
// under: item targeting from the address, the caller's filter, and the
// caller's visibility scope. Updates and deletes always pass
// canSeeAllExternal=false; only reads can earn the broadened scope.
func (p *Provider) effectiveWhere(addr resource.Address, c access.Caller, filter string, filterArgs []any, canSeeAllExternal bool) *whereClause {
	where := &whereClause{}
	if addr.Kind == resource.KindItem {
		where.and(transfer.ColID+" = ?", addr.ID)
	}
	if filter != "" {
		where.and("( "+filter+" )", filterArgs...)
	}
	if p.scoper.NeedsRestriction(c) {
		pred := p.scoper.ScopePredicate(c, canSeeAllExternal)
		where.and(pred.SQL, pred.Args...)
	}
	return where
}
