package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/policy"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// Update changes rows at a collection or item address and returns the number
// of rows changed.
//
// Cross-process callers are filtered to the update-safe column subset;
// unsafe fields are silently dropped, and an update whose every field was
// dropped still succeeds (touching zero rows) and still publishes a change
// event. Same-process callers write any field. Restricted callers can only
// reach rows they own or co-own, whatever filter they supply.
//
// Writing the control field raises the work trigger exactly once, after the
// update succeeds.
func (p *Provider) Update(ctx context.Context, address string, caller access.Caller, fields transfer.Fields, filter string, filterArgs []any) (int64, error) {
	addr := resource.Classify(address)
	if addr.Kind != resource.KindCollection && addr.Kind != resource.KindItem {
		return 0, badAddress(address, "update")
	}
	if err := policy.ValidateSelection(filter); err != nil {
		return 0, &RequestError{Code: CodeBadSelection, Message: err.Error(), Address: address}
	}

	row := transfer.Fields{}
	if caller.SameProcess {
		for k, v := range fields {
			row[k] = v
		}
		if err := p.deriveTitle(ctx, addr, caller, filter, filterArgs, row); err != nil {
			return 0, err
		}
	} else {
		for k, v := range fields {
			if policy.UpdateSafe(k) {
				row[k] = v
			}
		}
	}
	fireTrigger := row.Has(transfer.ColControl)

	var count int64
	if len(row) > 0 {
		where := p.effectiveWhere(addr, caller, filter, filterArgs, false)

		cols := row.SortedKeys()
		sets := make([]string, len(cols))
		args := make([]any, 0, len(cols)+len(where.args))
		for i, col := range cols {
			sets[i] = col + " = ?"
			args = append(args, row[col])
		}
		args = append(args, where.args...)

		stmt := "UPDATE transfers SET " + strings.Join(sets, ", ")
		if w := where.sql(); w != "" {
			stmt += " WHERE " + w
		}
		res, err := p.st.Exec(ctx, stmt, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to update transfers: %w", err)
		}
		count, err = res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count updated rows: %w", err)
		}
	}

	if fireTrigger {
		p.trigger.StartWork(ctx, notify.ReasonControl)
	}
	p.notifier.NotifyChange(ctx, notify.Event{Address: address, Op: notify.OpUpdate})
	return count, nil
}

// deriveTitle fills in a display title from the final local path when the
// worker records it on a row that never got one. The current title is read
// from the first row the update targets, item- or collection-addressed.
func (p *Provider) deriveTitle(ctx context.Context, addr resource.Address, caller access.Caller, filter string, filterArgs []any, row transfer.Fields) error {
	path, ok := row.String(transfer.ColLocalPath)
	if !ok || path == "" || row.Has(transfer.ColTitle) {
		return nil
	}
	where := p.effectiveWhere(addr, caller, filter, filterArgs, false)
	stmt := "SELECT " + transfer.ColTitle + " FROM transfers"
	if w := where.sql(); w != "" {
		stmt += " WHERE " + w
	}
	stmt += " LIMIT 1"

	var title sql.NullString
	err := p.st.DB().QueryRowContext(ctx, stmt, where.args...).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read current title: %w", err)
	}
	if !title.Valid || title.String == "" {
		row[transfer.ColTitle] = filepath.Base(path)
	}
	return nil
}

// Pause sets the control flag of one transfer to paused on behalf of caller.
func (p *Provider) Pause(ctx context.Context, address string, caller access.Caller) (int64, error) {
	return p.Update(ctx, address, caller, transfer.Fields{
		transfer.ColControl: int64(transfer.ControlPaused),
	}, "", nil)
}

// Resume sets the control flag of one transfer to run on behalf of caller.
func (p *Provider) Resume(ctx context.Context, address string, caller access.Caller) (int64, error) {
	return p.Update(ctx, address, caller, transfer.Fields{
		transfer.ColControl: int64(transfer.ControlRun),
	}, "", nil)
}
