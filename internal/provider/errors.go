package provider

import (
	"errors"
	"fmt"
)

// Code classifies a request failure. Every rejection the engine produces is
// a *RequestError carrying one of these; anything else escaping an operation
// is an internal storage failure.
type Code string

const (
	// CodeBadAddress - the address does not match any recognized shape, or
	// matches one the operation does not serve.
	CodeBadAddress Code = "BAD_ADDRESS"

	// CodeBadProjection - an explicit projection names a column outside the
	// read allow-list.
	CodeBadProjection Code = "BAD_PROJECTION"

	// CodeBadSelection - a filter or sort expression names a disallowed
	// column, is malformed, or was supplied where none is accepted.
	CodeBadSelection Code = "BAD_SELECTION"

	// CodeBadHeader - a header pseudo-field does not parse as "Name: Value".
	CodeBadHeader Code = "BAD_HEADER"

	// CodeBadOpenMode - OpenContent was asked for anything but read-only.
	CodeBadOpenMode Code = "BAD_OPEN_MODE"

	// CodeBadPath - the stored local path failed validation and will not be
	// opened.
	CodeBadPath Code = "BAD_PATH"

	// CodeUnauthorized - the caller supplied a value its permissions do not
	// cover.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeNotFound - the address resolved to zero visible rows.
	CodeNotFound Code = "NOT_FOUND"

	// CodeAmbiguous - OpenContent resolved to more than one row.
	CodeAmbiguous Code = "AMBIGUOUS"
)

// RequestError is a failure attributable to the request rather than to
// storage.
type RequestError struct {
	Code    Code
	Message string
	Address string
}

func (e *RequestError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Address)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a RequestError with the given code.
func HasCode(err error, code Code) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Code == code
}

// IsNotFound reports whether err is a zero-match failure.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsUnauthorized reports whether err is a permission rejection.
func IsUnauthorized(err error) bool {
	return HasCode(err, CodeUnauthorized)
}

func badAddress(address, op string) error {
	return &RequestError{
		Code:    CodeBadAddress,
		Message: fmt.Sprintf("address not servable by %s", op),
		Address: address,
	}
}

func unauthorized(address, msg string) error {
	return &RequestError{Code: CodeUnauthorized, Message: msg, Address: address}
}
