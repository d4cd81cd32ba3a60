package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/notify"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// Create inserts one transfer row, addressed at the collection. The supplied
// field set is filtered against the create policy: recognized writable fields
// are copied, server-controlled fields are stamped, and anything else is
// silently dropped. Values that a permission gates (restricted destinations,
// the secondary owner, a foreign notification target) are the exception:
// restricted destinations reject the request outright rather than being
// dropped.
//
// Header pseudo-fields are parsed first; one malformed header rejects the
// whole create and nothing is written. The row and its headers commit in a
// single transaction. On success the work trigger fires once and a create
// event is published, and the new item's address is returned.
func (p *Provider) Create(ctx context.Context, address string, caller access.Caller, fields transfer.Fields) (string, error) {
	addr := resource.Classify(address)
	if addr.Kind != resource.KindCollection {
		return "", badAddress(address, "create")
	}

	headers, err := parseHeaderFields(address, fields)
	if err != nil {
		return "", err
	}

	row := transfer.Fields{}
	copyString(fields, row, transfer.ColURI)
	copyString(fields, row, transfer.ColAppData)
	copyBool(fields, row, transfer.ColNoIntegrity)
	copyString(fields, row, transfer.ColFileNameHint)
	copyString(fields, row, transfer.ColMimeType)

	if err := p.copyDestination(address, caller, fields, row); err != nil {
		return "", err
	}
	p.applyVisibility(fields, row)
	copyInt(fields, row, transfer.ColControl)

	// Server-controlled state.
	row[transfer.ColStatus] = int64(transfer.StatusPending)
	row[transfer.ColLastModification] = p.clock.NowMillis()

	p.copyNotificationTarget(caller, fields, row)

	copyString(fields, row, transfer.ColNotificationExtras)
	copyString(fields, row, transfer.ColCookieData)
	copyString(fields, row, transfer.ColUserAgent)
	copyString(fields, row, transfer.ColReferer)
	copyString(fields, row, transfer.ColTitle)
	copyString(fields, row, transfer.ColDescription)

	if caller.Has(access.PermAccessAdvanced) {
		copyInt(fields, row, transfer.ColOtherUID)
	}

	// The owner stamp is always the verified caller identity; only the
	// system identity may create rows on another owner's behalf.
	row[transfer.ColUID] = caller.UID
	if caller.UID == p.scoper.SystemUID {
		copyInt(fields, row, transfer.ColUID)
	}

	tx, err := p.st.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cols := row.SortedKeys()
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = row[col]
	}
	stmt := fmt.Sprintf("INSERT INTO transfers (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return "", fmt.Errorf("failed to insert transfer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to read new row id: %w", err)
	}

	if err := insertHeaders(ctx, tx, id, headers); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transfer: %w", err)
	}

	p.logger.Debug("transfer created", "id", id, "uid", row[transfer.ColUID], "headers", len(headers))

	p.trigger.StartWork(ctx, notify.ReasonCreate)
	p.notifier.NotifyChange(ctx, notify.Event{Address: address, Op: notify.OpCreate})
	return resource.ItemAddress(id), nil
}

// copyDestination validates and copies the destination field. Non-advanced
// callers may only choose the external, purgeable-cache and file-URI classes,
// and file-URI additionally requires the storage write permission. Supplying
// a gated value without the permission is the one place creation rejects
// instead of dropping.
func (p *Provider) copyDestination(address string, caller access.Caller, fields, row transfer.Fields) error {
	dest, ok := fields.Int(transfer.ColDestination)
	if !ok {
		return nil
	}
	if !caller.Has(access.PermAccessAdvanced) {
		switch transfer.Destination(dest) {
		case transfer.DestinationExternal, transfer.DestinationCachePurgeable, transfer.DestinationFileURI:
		default:
			return unauthorized(address, fmt.Sprintf("destination %d requires advanced access", dest))
		}
	}
	if transfer.Destination(dest) == transfer.DestinationFileURI && !caller.Has(access.PermWriteExternalStorage) {
		return unauthorized(address, "file URI destination requires external storage write access")
	}
	row[transfer.ColDestination] = dest
	return nil
}

// applyVisibility copies the caller's visibility or derives the default:
// external-destination rows notify on completion, everything else is hidden.
func (p *Provider) applyVisibility(fields, row transfer.Fields) {
	if vis, ok := fields.Int(transfer.ColVisibility); ok {
		row[transfer.ColVisibility] = vis
		return
	}
	if dest, ok := row.Int(transfer.ColDestination); ok && transfer.Destination(dest) == transfer.DestinationExternal {
		row[transfer.ColVisibility] = int64(transfer.VisibilityNotifyCompleted)
		return
	}
	row[transfer.ColVisibility] = int64(transfer.VisibilityHidden)
}

// copyNotificationTarget copies the completion-notification target only when
// the caller owns the named package (or is the system identity). Both parts
// must be present; a half-specified or foreign target is dropped, never an
// error.
func (p *Provider) copyNotificationTarget(caller access.Caller, fields, row transfer.Fields) {
	pkg, okPkg := fields.String(transfer.ColNotificationPackage)
	class, okClass := fields.String(transfer.ColNotificationClass)
	if !okPkg || !okClass {
		return
	}
	if caller.UID != p.scoper.SystemUID {
		owner, known := p.owners.OwnerUID(pkg)
		if !known || owner != caller.UID {
			p.logger.Debug("dropping foreign notification target", "package", pkg, "uid", caller.UID)
			return
		}
	}
	row[transfer.ColNotificationPackage] = pkg
	row[transfer.ColNotificationClass] = class
}

func copyString(src, dst transfer.Fields, key string) {
	if v, ok := src.String(key); ok {
		dst[key] = v
	}
}

func copyInt(src, dst transfer.Fields, key string) {
	if v, ok := src.Int(key); ok {
		dst[key] = v
	}
}

func copyBool(src, dst transfer.Fields, key string) {
	if v, ok := src.Bool(key); ok {
		dst[key] = v
	}
}
