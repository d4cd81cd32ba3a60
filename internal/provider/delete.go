package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/policy"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// Delete removes rows at a collection or item address together with their
// request headers, and returns the number of rows removed.
//
// The header cascade honors the same effective predicate as the row delete:
// the doomed row set is resolved first, its headers deleted by identifier,
// then the rows, all inside one transaction. Deleting zero rows succeeds and
// still publishes a change event.
func (p *Provider) Delete(ctx context.Context, address string, caller access.Caller, filter string, filterArgs []any) (int64, error) {
	addr := resource.Classify(address)
	if addr.Kind != resource.KindCollection && addr.Kind != resource.KindItem {
		return 0, badAddress(address, "delete")
	}
	if err := policy.ValidateSelection(filter); err != nil {
		return 0, &RequestError{Code: CodeBadSelection, Message: err.Error(), Address: address}
	}

	where := p.effectiveWhere(addr, caller, filter, filterArgs, false)

	tx, err := p.st.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := "SELECT " + transfer.ColID + " FROM transfers"
	if w := where.sql(); w != "" {
		stmt += " WHERE " + w
	}
	rows, err := tx.QueryContext(ctx, stmt, where.args...)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve rows to delete: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan row id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to read row ids: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}

		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM request_headers WHERE %s IN (%s)", transfer.HeaderColTransferID, placeholders),
			args...,
		); err != nil {
			return 0, fmt.Errorf("failed to delete request headers: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM transfers WHERE %s IN (%s)", transfer.ColID, placeholders),
			args...,
		); err != nil {
			return 0, fmt.Errorf("failed to delete transfers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	if len(ids) > 0 {
		p.logger.Debug("transfers deleted", "count", len(ids), "uid", caller.UID)
	}
	p.notifier.NotifyChange(ctx, notify.Event{Address: address, Op: notify.OpDelete})
	return int64(len(ids)), nil
}
