// Package resource maps URI-style addresses onto the resources this store
// exposes: the transfer collection, a single transfer, or the request-header
// rows owned by one transfer.
package resource

import (
	"fmt"
	"strconv"
	"strings"
)

// CollectionPath is the path segment naming the transfer collection.
const CollectionPath = "transfers"

// headersSegment is the fixed sub-resource segment for request headers.
const headersSegment = "headers"

// Kind classifies an address.
type Kind int

const (
	// KindUnrecognized marks any address shape this store does not serve.
	// Callers must treat it as a client error, not a not-found.
	KindUnrecognized Kind = iota

	// KindCollection addresses the whole transfer table.
	KindCollection

	// KindItem addresses one transfer row by identifier.
	KindItem

	// KindItemHeaders addresses the request-header rows of one transfer.
	KindItemHeaders
)

// Address is a classified resource address. ID is meaningful only for
// KindItem and KindItemHeaders.
type Address struct {
	Kind Kind
	ID   int64
	raw  string
}

// Classify parses an address into one of the recognized shapes. Matching is
// structural: a bare collection path, the collection path plus a numeric
// segment, or that plus the headers segment. Anything else, including a
// numeric segment that fails to parse, is KindUnrecognized.
func Classify(address string) Address {
	addr := Address{Kind: KindUnrecognized, raw: address}

	trimmed := strings.Trim(address, "/")
	if trimmed == "" {
		return addr
	}
	segments := strings.Split(trimmed, "/")
	if segments[0] != CollectionPath || len(segments) > 3 {
		return addr
	}

	if len(segments) == 1 {
		addr.Kind = KindCollection
		return addr
	}

	id, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil || id < 0 {
		return addr
	}

	switch len(segments) {
	case 2:
		addr.Kind = KindItem
		addr.ID = id
	case 3:
		if segments[2] == headersSegment {
			addr.Kind = KindItemHeaders
			addr.ID = id
		}
	}
	return addr
}

// String returns the address as originally supplied.
func (a Address) String() string {
	return a.raw
}

// ItemAddress formats the canonical address of one transfer.
func ItemAddress(id int64) string {
	return fmt.Sprintf("%s/%d", CollectionPath, id)
}

// HeadersAddress formats the canonical address of a transfer's headers.
func HeadersAddress(id int64) string {
	return fmt.Sprintf("%s/%d/%s", CollectionPath, id, headersSegment)
}
