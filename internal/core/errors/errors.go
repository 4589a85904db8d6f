// Package errors tags failures with a stable code so callers can tell a bad
// invocation from a broken project or an internal fault.
package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeUsage marks invocations that name no usable root.
	CodeUsage ErrorCode = "USAGE_ERROR"
	// CodeConfigLoad marks a tsconfig.json that exists but cannot be read.
	CodeConfigLoad      ErrorCode = "CONFIG_LOAD_FAILED"
	CodeInvalidConfig   ErrorCode = "INVALID_CONFIG"
	CodeUnsupportedFile ErrorCode = "UNSUPPORTED_FILE"
	CodeHistoryCorrupt  ErrorCode = "HISTORY_CORRUPT"
	CodeNoSnapshots     ErrorCode = "NO_SNAPSHOTS"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// CtxPath is the context key for the file or directory an error concerns.
const CtxPath = "path"

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches key=value to err. Errors without a code become
// CodeInternal.
func AddContext(err error, key string, value any) error {
	var de *DomainError
	if !errors.As(err, &de) {
		de = &DomainError{Code: CodeInternal, Message: "wrapped error", Err: err}
		err = de
	}
	if de.Context == nil {
		de.Context = make(map[string]any)
	}
	de.Context[key] = value
	return err
}

func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
