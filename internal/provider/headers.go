package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// parseHeaderFields extracts the HTTP request headers carried as prefixed
// pseudo-fields in a create field set. Each value is one "Name: Value" line;
// a line with no colon rejects the whole create. Keys are visited in sorted
// order so insertion order is deterministic.
func parseHeaderFields(address string, fields transfer.Fields) ([]transfer.Header, error) {
	var headers []transfer.Header
	for _, key := range fields.SortedKeys() {
		if !strings.HasPrefix(key, transfer.HeaderFieldPrefix) {
			continue
		}
		line := fmt.Sprint(fields[key])
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, &RequestError{
				Code:    CodeBadHeader,
				Message: fmt.Sprintf("invalid HTTP header line %q", line),
				Address: address,
			}
		}
		headers = append(headers, transfer.Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return headers, nil
}

// insertHeaders writes the parsed headers for one transfer inside the
// creating transaction.
func insertHeaders(ctx context.Context, tx *sql.Tx, transferID int64, headers []transfer.Header) error {
	if len(headers) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(
		"INSERT INTO request_headers (%s, %s, %s) VALUES (?, ?, ?)",
		transfer.HeaderColTransferID, transfer.HeaderColHeader, transfer.HeaderColValue,
	)
	for _, h := range headers {
		if _, err := tx.ExecContext(ctx, stmt, transferID, h.Name, h.Value); err != nil {
			return fmt.Errorf("failed to insert header %q: %w", h.Name, err)
		}
	}
	return nil
}

// queryHeaders serves a read on the header sub-resource. The result shape is
// fixed: header and value columns, in insertion order.
func (p *Provider) queryHeaders(ctx context.Context, addr resource.Address) (*RowSet, error) {
	stmt := fmt.Sprintf(
		"SELECT %s, %s FROM request_headers WHERE %s = ? ORDER BY %s ASC",
		transfer.HeaderColHeader, transfer.HeaderColValue,
		transfer.HeaderColTransferID, transfer.HeaderColID,
	)
	rows, err := p.st.Query(ctx, stmt, addr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query headers: %w", err)
	}
	defer rows.Close()

	rs := &RowSet{
		Address: addr.String(),
		Columns: []string{transfer.HeaderColHeader, transfer.HeaderColValue},
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan header row: %w", err)
		}
		rs.Rows = append(rs.Rows, transfer.Row{
			transfer.HeaderColHeader: name,
			transfer.HeaderColValue:  value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header rows: %w", err)
	}
	return rs, nil
}
