package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/policy"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// QueryOptions shape a read. A nil or empty Projection selects the default
// (the read allow-list minus the local path); an empty Filter matches
// everything in scope; an empty Sort orders by ascending identifier.
type QueryOptions struct {
	Projection []string
	Filter     string
	FilterArgs []any
	Sort       string
}

// RowSet is a query result: the address it answered, the projected columns
// in order, and the matching rows.
type RowSet struct {
	Address string
	Columns []string
	Rows    []transfer.Row
}

// Query reads rows at a collection, item or header sub-resource address.
//
// Projections, filters and sorts are validated against the read allow-list
// before any SQL is built; a disallowed column rejects the request. Restricted
// callers see only rows they own or co-own, broadened to all
// external-destination rows when they hold the see-all permission AND their
// explicit projection excludes the local path. Header reads take no
// projection, filter or sort.
func (p *Provider) Query(ctx context.Context, address string, caller access.Caller, opts QueryOptions) (*RowSet, error) {
	addr := resource.Classify(address)
	switch addr.Kind {
	case resource.KindItemHeaders:
		if len(opts.Projection) > 0 || opts.Filter != "" || opts.Sort != "" || len(opts.FilterArgs) > 0 {
			return nil, &RequestError{
				Code:    CodeBadSelection,
				Message: "header reads accept no projection, filter or sort",
				Address: address,
			}
		}
		return p.queryHeaders(ctx, addr)
	case resource.KindCollection, resource.KindItem:
	default:
		return nil, badAddress(address, "query")
	}

	if err := policy.ValidateSelection(opts.Filter); err != nil {
		return nil, &RequestError{Code: CodeBadSelection, Message: err.Error(), Address: address}
	}
	if opts.Sort != "" {
		if err := policy.ValidateSelection(opts.Sort); err != nil {
			return nil, &RequestError{Code: CodeBadSelection, Message: err.Error(), Address: address}
		}
	}

	projection := opts.Projection
	canSeeAllExternal := false
	if len(projection) == 0 {
		projection = policy.DefaultProjection()
	} else {
		if err := policy.ValidateProjection(projection); err != nil {
			return nil, &RequestError{Code: CodeBadProjection, Message: err.Error(), Address: address}
		}
		canSeeAllExternal = caller.Has(access.PermSeeAllExternal)
		for _, col := range projection {
			if col == transfer.ColLocalPath {
				canSeeAllExternal = false
				break
			}
		}
	}

	where := p.effectiveWhere(addr, caller, opts.Filter, opts.FilterArgs, canSeeAllExternal)

	orderBy := opts.Sort
	if orderBy == "" {
		orderBy = transfer.ColID + " ASC"
	}

	stmt := "SELECT " + strings.Join(projection, ", ") + " FROM transfers"
	if w := where.sql(); w != "" {
		stmt += " WHERE " + w
	}
	stmt += " ORDER BY " + orderBy

	rows, err := p.st.Query(ctx, stmt, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	rs := &RowSet{Address: address, Columns: projection}
	values := make([]any, len(projection))
	ptrs := make([]any, len(projection))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		row := make(transfer.Row, len(projection))
		for i, col := range projection {
			row[col] = normalizeValue(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transfer rows: %w", err)
	}
	return rs, nil
}

// normalizeValue maps driver scan types onto the field value types callers
// supply, so rows read back comparable to what was written.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
