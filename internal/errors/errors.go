// Package errors defines the error taxonomy shared by the scenario engine.
// Every error carries a Code so callers can branch with errors.Is against
// the sentinel values below, regardless of the message or wrapped cause.
package errors

import "fmt"

const (
	// CodeDeclaration marks an invalid composition declaration.
	CodeDeclaration = "DECLARATION"
	// CodeConfiguration marks an invalid configuration call or argument list.
	CodeConfiguration = "CONFIGURATION"
	// CodeUnresolvedParameter marks a constructor parameter no source could satisfy.
	CodeUnresolvedParameter = "UNRESOLVED_PARAMETER"
	// CodeInvalidState marks an operation on an object in the wrong state.
	CodeInvalidState = "INVALID_STATE"
	// CodeMissingVariable marks a read of a context variable that was never set.
	CodeMissingVariable = "MISSING_VARIABLE"
	// CodeTypeMismatch marks a read of a context variable as the wrong type.
	CodeTypeMismatch = "TYPE_MISMATCH"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrDeclaration         = New(CodeDeclaration, "invalid declaration")
	ErrConfiguration       = New(CodeConfiguration, "invalid configuration")
	ErrUnresolvedParameter = New(CodeUnresolvedParameter, "unresolved parameter")
	ErrInvalidState        = New(CodeInvalidState, "invalid state")
	ErrMissingVariable     = New(CodeMissingVariable, "missing variable")
	ErrTypeMismatch        = New(CodeTypeMismatch, "type mismatch")
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
