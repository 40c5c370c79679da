package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("resource not found")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	TypeServer     Type = iota // storage, database or other infrastructure failures
	TypeBusiness               // domain rules: missing records, conflicts, credentials
	TypeValidation             // caller input that cannot be accepted
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal      Code = iota // unspecified failure
	CodeInvalidFormat             // request body cannot be decoded
	CodeInvalidInput              // decoded input is not acceptable
	CodeNotFound                  // record missing or not visible to the caller
	CodeConflict                  // duplicate record
	CodeUnauthorized              // missing or rejected credentials
	CodeTooLarge                  // payload over the accepted size
)

type codeInfo struct {
	name   string
	status int
}

//nolint:gochecknoglobals // read-only lookup table
var codes = map[Code]codeInfo{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeUnauthorized:  {"ERROR_CODE_UNAUTHORIZED", http.StatusUnauthorized},
	CodeTooLarge:      {"ERROR_CODE_TOO_LARGE", http.StatusRequestEntityTooLarge},
}

func (c Code) info() codeInfo {
	if info, ok := codes[c]; ok {
		return info
	}
	return codes[CodeInternal]
}

func (c Code) String() string {
	return c.info().name
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, and a stable error code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation violation"
	case e.errType == TypeBusiness:
		return "Logical business not meet with requirement"
	case e.errType == TypeServer:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// String returns a verbose representation of the error for logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err,
	)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Detail returns the underlying error text when it is safe to show to clients.
//
// Server errors never expose their cause.
func (e *Error) Detail() string {
	if e.err == nil || e.errType == TypeServer {
		return ""
	}
	return e.err.Error()
}

func (e *Error) Type() Type {
	return e.errType
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	return e.code.info().status
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message; the cause is only logged.
func NewServer(err error) error {
	return new(err, "Internal server error", TypeServer, CodeInternal)
}

func NewNotFound(msg string) error {
	return new(nil, msg, TypeBusiness, CodeNotFound)
}

func NewConflict(msg string) error {
	return new(nil, msg, TypeBusiness, CodeConflict)
}

func NewUnauthorized(msg string) error {
	return new(nil, msg, TypeBusiness, CodeUnauthorized)
}

// NewInvalidFormat reports a request body that could not be decoded.
func NewInvalidFormat() error {
	return new(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}

// NewValidation creates a validation error with a custom message. A non-nil
// err is exposed to clients as the error detail.
func NewValidation(msg string, err error) error {
	return new(err, msg, TypeValidation, CodeInvalidInput)
}

func NewTooLarge(err error) error {
	return new(err, "payload too large", TypeValidation, CodeTooLarge)
}
