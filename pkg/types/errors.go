// Package types error taxonomy.
//
// Every failure raised while encoding, hashing, signing or parsing a
// transaction is reported as an *Error carrying one of the codes below.
// Errors are raised synchronously and are never retried: callers treat any
// error as a rejection of the whole operation, there are no partial results.
//
// Sentinel values (ErrInvalidFieldValue, ErrMissingIndex, ...) match any
// *Error with the same code through errors.Is:
//
//	if errors.Is(err, types.ErrMissingIndex) { ... }
package types

import "fmt"

// Error codes used throughout the library.
const (
	CodeInvalidFieldValue    = "INVALID_FIELD_VALUE"    // A field fails to parse into its value type
	CodeInvalidSignatureTag  = "INVALID_SIGNATURE_TAG"  // Unrecognized tag bits or output selector
	CodeMissingIndex         = "MISSING_INDEX"          // Single-input tag without a usable index
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"  // Operation not meaningful for this transaction kind
	CodeSigningFailure       = "SIGNING_FAILURE"        // Propagated from the signer collaborator
	CodeAmountOverflow       = "AMOUNT_OVERFLOW"        // Checked arithmetic on asset amounts overflowed
)

// Error is the structured error returned by every package of the module.
type Error struct {
	Code    string // Error code (e.g., CodeInvalidFieldValue)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s]", e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidFieldValue    = &Error{Code: CodeInvalidFieldValue}
	ErrInvalidSignatureTag  = &Error{Code: CodeInvalidSignatureTag}
	ErrMissingIndex         = &Error{Code: CodeMissingIndex}
	ErrUnsupportedOperation = &Error{Code: CodeUnsupportedOperation}
	ErrSigningFailure       = &Error{Code: CodeSigningFailure}
	ErrAmountOverflow       = &Error{Code: CodeAmountOverflow}
)

// Errorf builds an *Error with a formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around cause with a formatted message.
func Wrap(code string, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}
