// Package domainerrors defines code-carrying errors shared between the
// service layer and transports. Stores speak in sentinel errors; services
// translate those into a Code here, and the HTTP layer maps Codes to status
// codes without inspecting error text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for callers.
type Code string

const (
	// Validation and conflict outcomes of list/item mutations.
	CodeDuplicateList    Code = "duplicate_list"
	CodeListNotFound     Code = "list_not_found"
	CodeItemNotFound     Code = "item_not_found"
	CodeInvalidQuantity  Code = "invalid_quantity"
	CodeQuantityOverflow Code = "quantity_overflow"

	// Infrastructure and transport outcomes.
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeBadRequest         Code = "bad_request"
	CodeInternal           Code = "internal"
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code. Alias of HasCode for
// call sites that read better as a predicate.
func Is(err error, code Code) bool { return HasCode(err, code) }

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the first domain error in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
