package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/micahjlucas/TransferProvider/internal/access"
	"github.com/micahjlucas/TransferProvider/internal/resource"
	"github.com/micahjlucas/TransferProvider/internal/transfer"
)

// OpenContent resolves an address to the single completed payload file
// beneath it and opens that file read-only. Write modes are rejected:
// payload files are worker-owned.
//
// Resolution runs as a normal read under the caller's scope, so a row the
// caller cannot see is indistinguishable from one that does not exist. Zero
// matches and multiple matches fail with distinct codes. The stored path is
// validated before opening, and a successful open stamps the row's
// last-modification time through the regular update path.
func (p *Provider) OpenContent(ctx context.Context, address string, caller access.Caller, mode string) (*os.File, error) {
	if mode != "r" {
		return nil, &RequestError{
			Code:    CodeBadOpenMode,
			Message: fmt.Sprintf("mode %q not supported, content is read-only", mode),
			Address: address,
		}
	}
	addr := resource.Classify(address)
	if addr.Kind != resource.KindCollection && addr.Kind != resource.KindItem {
		return nil, badAddress(address, "open")
	}

	rs, err := p.Query(ctx, address, caller, QueryOptions{
		Projection: []string{transfer.ColLocalPath},
	})
	if err != nil {
		return nil, err
	}
	switch {
	case len(rs.Rows) == 0:
		return nil, &RequestError{Code: CodeNotFound, Message: "no transfer at address", Address: address}
	case len(rs.Rows) > 1:
		return nil, &RequestError{
			Code:    CodeAmbiguous,
			Message: fmt.Sprintf("%d transfers at address", len(rs.Rows)),
			Address: address,
		}
	}

	path, _ := rs.Rows[0][transfer.ColLocalPath].(string)
	if path == "" {
		return nil, &RequestError{Code: CodeNotFound, Message: "transfer has no payload file", Address: address}
	}
	if !p.validPath(path) {
		p.logger.Warn("refusing to open invalid payload path", "address", address, "uid", caller.UID)
		return nil, &RequestError{Code: CodeBadPath, Message: "stored payload path failed validation", Address: address}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &RequestError{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("payload file unavailable: %v", err),
			Address: address,
		}
	}

	// Best effort; an access-time stamp never fails the open. Cross-process
	// callers cannot write last_modification, so for them this is a no-op
	// update that still notifies observers.
	if _, err := p.Update(ctx, address, caller, transfer.Fields{
		transfer.ColLastModification: p.clock.NowMillis(),
	}, "", nil); err != nil {
		p.logger.Warn("failed to stamp access time", "address", address, "error", err)
	}

	return f, nil
}
