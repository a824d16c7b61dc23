// Package mongoerr classifies errors produced by store operations.
//
// The repository returns *Error values whose Code tells callers what kind of
// failure happened (bad input, no match, unreachable store, ...). HandleError
// turns those into errs.HTTPError values for the API.
package mongoerr

import (
	"errors"
	"fmt"

	"github.com/deppfellow/shelter/internal/errs"
)

// Code is the kind of a store error.
type Code string

const (
	// Other is any failure not covered by a more specific code.
	Other Code = "other"
	// Validation means the input was rejected before reaching the store.
	Validation Code = "validation"
	// NotFound means the query matched no document.
	NotFound Code = "not_found"
	// DuplicateKey means a unique index rejected the write.
	DuplicateKey Code = "duplicate_key"
	// Timeout means the operation ran out of time.
	Timeout Code = "timeout"
	// Transport means the store could not be reached.
	Transport Code = "transport"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrValidation   = &Error{Code: Validation}
	ErrNotFound     = &Error{Code: NotFound}
	ErrDuplicateKey = &Error{Code: DuplicateKey}
	ErrTimeout      = &Error{Code: Timeout}
	ErrTransport    = &Error{Code: Transport}
)

// Error is a classified store error.
type Error struct {
	Code Code

	// Op names the store operation, e.g. "create" or "analytics".
	Op string

	// Collection is the collection the operation ran against.
	Collection string

	Message string

	// Fields lists per-field problems for Validation errors.
	Fields []errs.FieldError

	driverErr error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.driverErr != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.driverErr)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap returns the driver error, if any.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrCode returns the Code of err, or Other when err is not classified.
func ErrCode(err error) Code {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return Other
}

// NewValidationError reports rejected input. fields may be empty.
func NewValidationError(op, message string, fields ...errs.FieldError) *Error {
	return &Error{
		Code:    Validation,
		Op:      op,
		Message: message,
		Fields:  fields,
	}
}

// NewNotFoundError reports that a query matched nothing.
func NewNotFoundError(op, collection string) *Error {
	return &Error{
		Code:       NotFound,
		Op:         op,
		Collection: collection,
		Message:    "no document matched the query",
	}
}
