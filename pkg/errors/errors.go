package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Error codes used across the service. The HTTP layer maps them to
// response statuses via HTTPStatus.
const (
	CodeValidation  = 40001 // malformed or missing required input
	CodeNoContacts  = 40002 // owner has no emergency contacts registered
	CodeNotFound    = 40401 // unknown alert id or tracking code
	CodeConflict    = 40901 // tracking code collision / duplicate submission
	CodePersistence = 50001 // store unavailable or write failed
)

// Error represents a custom error with code and stack trace
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // wrapped cause, not serialized
	Stack   string `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the errors.Wrapper interface
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCodef creates a new error with code and formatted message
func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(),
	}
}

// Validation reports malformed or missing caller input.
func Validation(format string, args ...interface{}) *Error {
	return WithCodef(CodeValidation, format, args...)
}

// NoContacts reports the dispatch precondition failure: no registered contacts.
func NoContacts(ownerID string) *Error {
	return WithCodef(CodeNoContacts, "no emergency contacts registered for owner %s", ownerID)
}

// NotFound reports an unknown alert id or tracking code.
func NotFound(format string, args ...interface{}) *Error {
	return WithCodef(CodeNotFound, format, args...)
}

// Conflict reports a uniqueness clash at creation time.
func Conflict(format string, args ...interface{}) *Error {
	return WithCodef(CodeConflict, format, args...)
}

// Persistence wraps a store failure.
func Persistence(err error, message string) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

// GetCode returns the error code
func GetCode(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return 0
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HTTPStatus maps an error code to the HTTP status the handlers should send.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeValidation, CodeNoContacts:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code int) bool {
	return GetCode(err) == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsCode(err, CodeNotFound) }

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool { return IsCode(err, CodeConflict) }

// captureStack captures the current stack trace
func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// drop the captureStack/constructor frames at the top
	lines := strings.Split(stack, "\n")
	if len(lines) > 6 {
		stack = strings.Join(lines[6:], "\n")
	}

	return strings.TrimSpace(stack)
}

// Format implements fmt.Formatter
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.Stack != "" {
				fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
