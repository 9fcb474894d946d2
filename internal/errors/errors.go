package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorCode names a specific failure reported to the caller.
type ErrorCode string

const (
	ErrEmptyDescription   ErrorCode = "EMPTY_DESCRIPTION"    // validation
	ErrMissingDate        ErrorCode = "MISSING_DATE"         // validation
	ErrBadDateFormat      ErrorCode = "BAD_DATE_FORMAT"      // validation or format
	ErrMarkersOutOfOrder  ErrorCode = "MARKERS_OUT_OF_ORDER" // validation
	ErrMissingTimeRange   ErrorCode = "MISSING_TIME_RANGE"   // validation
	ErrMissingIndex       ErrorCode = "MISSING_INDEX"        // validation
	ErrNonNumericIndex    ErrorCode = "NON_NUMERIC_INDEX"    // validation
	ErrIndexOutOfRange    ErrorCode = "INDEX_OUT_OF_RANGE"   // validation
	ErrUnknownCommand     ErrorCode = "UNKNOWN_COMMAND"      // validation
	ErrCapacityExceeded   ErrorCode = "CAPACITY_EXCEEDED"    // validation
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"        // validation
	ErrUnrecognizedFormat ErrorCode = "UNRECOGNIZED_FORMAT"  // format
	ErrStorage            ErrorCode = "STORAGE"              // storage
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // validation (export/import)
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"       // storage
	ErrInternal           ErrorCode = "INTERNAL"             // internal
)

// Kind groups codes by how the caller should react to them.
type Kind string

const (
	// KindValidation errors are recoverable: the list is unchanged and the session continues.
	KindValidation Kind = "validation"
	// KindFormat errors come from decoding persisted or imported records.
	KindFormat Kind = "format"
	// KindStorage errors come from the persistence collaborator.
	KindStorage Kind = "storage"
	KindInternal Kind = "internal"
)

// TallyError represents a structured error with code, kind, and details.
type TallyError struct {
	Code    ErrorCode
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *TallyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying I/O error for storage and internal errors.
func (e *TallyError) Unwrap() error {
	return e.cause
}

// Recoverable reports whether the session can continue unaffected.
func (e *TallyError) Recoverable() bool {
	return e.Kind == KindValidation || e.Kind == KindStorage
}

// NewEmptyDescription creates an error for a task command without a description.
func NewEmptyDescription(taskType string) *TallyError {
	return &TallyError{
		Code:    ErrEmptyDescription,
		Kind:    KindValidation,
		Message: fmt.Sprintf("the description of a %s cannot be empty", taskType),
		Details: map[string]any{"type": taskType},
	}
}

// NewMissingDate creates an error for a deadline without a /by value.
func NewMissingDate() *TallyError {
	return &TallyError{
		Code:    ErrMissingDate,
		Kind:    KindValidation,
		Message: "a deadline needs a due date, e.g. /by 2024-12-01 15:00",
	}
}

// NewBadDateFormat creates an error for a date that does not match the expected pattern.
// The same code is used for interactive input and for persisted lines.
func NewBadDateFormat(value, pattern string, kind Kind) *TallyError {
	return &TallyError{
		Code:    ErrBadDateFormat,
		Kind:    kind,
		Message: fmt.Sprintf("invalid date %q: expected format %s", value, pattern),
		Details: map[string]any{"value": value, "pattern": pattern},
	}
}

// NewMarkersOutOfOrder creates an error for an event where /to precedes /from.
func NewMarkersOutOfOrder() *TallyError {
	return &TallyError{
		Code:    ErrMarkersOutOfOrder,
		Kind:    KindValidation,
		Message: "/from must come before /to, e.g. /from Mon 2pm /to 4pm",
	}
}

// NewMissingTimeRange creates an error for an event without both start and end.
func NewMissingTimeRange() *TallyError {
	return &TallyError{
		Code:    ErrMissingTimeRange,
		Kind:    KindValidation,
		Message: "an event needs both a start and an end, e.g. /from Mon 2pm /to 4pm",
	}
}

// NewMissingIndex creates an error for mark/unmark/delete without a task number.
func NewMissingIndex(command string) *TallyError {
	return &TallyError{
		Code:    ErrMissingIndex,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s needs a task number, e.g. %s 2", command, command),
		Details: map[string]any{"command": command},
	}
}

// NewNonNumericIndex creates an error for a task number that is not an integer.
func NewNonNumericIndex(value string) *TallyError {
	return &TallyError{
		Code:    ErrNonNumericIndex,
		Kind:    KindValidation,
		Message: fmt.Sprintf("task number %q is not a number", value),
		Details: map[string]any{"value": value},
	}
}

// NewIndexOutOfRange creates an error for a 1-based task number outside [1, size].
func NewIndexOutOfRange(number, size int) *TallyError {
	err := indexOutOfRange(strconv.Itoa(number), size)
	err.Details["number"] = number
	return err
}

// NewNumberOutOfRange is NewIndexOutOfRange for a number too large to
// hold in an int.
func NewNumberOutOfRange(value string, size int) *TallyError {
	err := indexOutOfRange(value, size)
	err.Details["value"] = value
	return err
}

func indexOutOfRange(number string, size int) *TallyError {
	msg := fmt.Sprintf("task %s does not exist; the list has %d tasks", number, size)
	if size == 0 {
		msg = fmt.Sprintf("task %s does not exist; the list is empty", number)
	}
	return &TallyError{
		Code:    ErrIndexOutOfRange,
		Kind:    KindValidation,
		Message: msg,
		Details: map[string]any{"size": size},
	}
}

// NewUnknownCommand creates an error naming the accepted command words.
func NewUnknownCommand(word string, accepted []string) *TallyError {
	return &TallyError{
		Code:    ErrUnknownCommand,
		Kind:    KindValidation,
		Message: fmt.Sprintf("unknown command %q; use one of: %s", word, strings.Join(accepted, ", ")),
		Details: map[string]any{"command": word, "accepted": accepted},
	}
}

// NewCapacityExceeded creates an error when the configured task limit is reached.
func NewCapacityExceeded(max int) *TallyError {
	return &TallyError{
		Code:    ErrCapacityExceeded,
		Kind:    KindValidation,
		Message: fmt.Sprintf("too many tasks: the maximum is %d", max),
		Details: map[string]any{"max_tasks": max},
	}
}

// NewInvalidInput creates an error for text that cannot be stored as a
// single task line, e.g. a line break inside a description.
func NewInvalidInput(field, reason string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidInput,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// NewUnrecognizedFormat creates a format error naming the offending line.
func NewUnrecognizedFormat(line string) *TallyError {
	return &TallyError{
		Code:    ErrUnrecognizedFormat,
		Kind:    KindFormat,
		Message: fmt.Sprintf("unrecognized task format: %s", line),
		Details: map[string]any{"line": line},
	}
}

// AtLine annotates a format error with the 1-based line it came from.
func AtLine(err error, lineNo int) error {
	var tErr *TallyError
	if !stderrors.As(err, &tErr) {
		return err
	}
	details := make(map[string]any, len(tErr.Details)+1)
	for k, v := range tErr.Details {
		details[k] = v
	}
	details["line_no"] = lineNo
	return &TallyError{
		Code:    tErr.Code,
		Kind:    tErr.Kind,
		Message: fmt.Sprintf("line %d: %s", lineNo, tErr.Message),
		Details: details,
		cause:   tErr.cause,
	}
}

// NewStorage wraps a persistence failure.
func NewStorage(op string, err error) *TallyError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &TallyError{
		Code:    ErrStorage,
		Kind:    KindStorage,
		Message: msg,
		Details: map[string]any{"op": op},
		cause:   err,
	}
}

// NewInvalidRequest creates an error for invalid export/import parameters.
func NewInvalidRequest(msg string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// NewFileNotFound creates an error when an import file does not exist.
func NewFileNotFound(path string) *TallyError {
	return &TallyError{
		Code:    ErrFileNotFound,
		Kind:    KindStorage,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates an error for unexpected internal failures.
// The original error is kept in Details for logging only.
func NewInternal(err error) *TallyError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TallyError{
		Code:    ErrInternal,
		Kind:    KindInternal,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if err is (or wraps) a TallyError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TallyError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

// As returns the TallyError inside err, if any.
func As(err error) (*TallyError, bool) {
	var tErr *TallyError
	if stderrors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
