package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"

	CodeManifestMissing ErrorCode = "MANIFEST_MISSING"
	CodePackageMissing  ErrorCode = "PACKAGE_MISSING"
	CodeNameMissing     ErrorCode = "NAME_MISSING"
	CodeEntryMissing    ErrorCode = "ENTRY_MISSING"
	CodeModNameEmpty    ErrorCode = "MOD_NAME_EMPTY"
	CodeModPath         ErrorCode = "MOD_PATH_UNRESOLVED"
	CodeParse           ErrorCode = "PARSE_ERROR"
)

// Process exit statuses. Callers rely on these staying stable.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitNameMissing     = 2
	ExitPackageMissing  = 3
	ExitManifestMissing = 4
	ExitEntryMissing    = 5
	ExitModNameEmpty    = 6
	ExitModPath         = 9
	ExitParse           = 12
)

var exitCodes = map[ErrorCode]int{
	CodeNameMissing:     ExitNameMissing,
	CodePackageMissing:  ExitPackageMissing,
	CodeManifestMissing: ExitManifestMissing,
	CodeEntryMissing:    ExitEntryMissing,
	CodeModNameEmpty:    ExitModNameEmpty,
	CodeModPath:         ExitModPath,
	CodeParse:           ExitParse,
}

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath   = "path"
	CtxModule = "module"
	CtxSymbol = "symbol"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
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

// AddContext attaches a key to the first DomainError in the chain, wrapping
// foreign errors as internal ones.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit status. Nil is success and any
// error without a dedicated status is a generic failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := exitCodes[de.Code]; ok {
			return code
		}
	}
	return ExitFailure
}
