// Package errors provides the standardized error taxonomy used by the assistant.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchFailed           ErrorCode = "FETCH_FAILED"
	ErrCodeTransportFailed       ErrorCode = "TRANSPORT_FAILED"
	ErrCodeInvalidPayload        ErrorCode = "INVALID_PAYLOAD"
	ErrCodeUnknownVaccine        ErrorCode = "UNKNOWN_VACCINE"
	ErrCodeInvalidDoseDate       ErrorCode = "INVALID_DOSE_DATE"
	ErrCodeIndexOutOfRange       ErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeEmptyInput            ErrorCode = "EMPTY_INPUT"
	ErrCodeSelectionInconsistent ErrorCode = "SELECTION_INCONSISTENT"
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeBookingFailed         ErrorCode = "BOOKING_FAILED"
	ErrCodeConfigInvalid         ErrorCode = "CONFIG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code, so sentinel values such as
// ErrEmptyInput work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrFetchFailed           = &StandardError{Code: ErrCodeFetchFailed}
	ErrUnknownVaccine        = &StandardError{Code: ErrCodeUnknownVaccine}
	ErrIndexOutOfRange       = &StandardError{Code: ErrCodeIndexOutOfRange}
	ErrEmptyInput            = &StandardError{Code: ErrCodeEmptyInput}
	ErrSelectionInconsistent = &StandardError{Code: ErrCodeSelectionInconsistent}
	ErrBookingFailed         = &StandardError{Code: ErrCodeBookingFailed}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchFailedError reports a non-2xx response from the booking API.
func NewFetchFailedError(resource string, statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   fmt.Sprintf("Unable to fetch %s", resource),
		Details:   fmt.Sprintf("status %d", statusCode),
		Retryable: statusCode >= 500,
		Metadata: map[string]interface{}{
			"resource":   resource,
			"statusCode": statusCode,
			"body":       body,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailedError reports a network-level failure or timeout.
func NewTransportFailedError(resource string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("Request for %s did not complete", resource),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"resource": resource},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidPayloadError reports a response body that does not match its schema.
func NewInvalidPayloadError(resource string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   fmt.Sprintf("Malformed %s payload", resource),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource},
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownVaccineError(vaccine string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownVaccine,
		Message:   "No dose interval known for vaccine",
		Details:   fmt.Sprintf("vaccine: %q", vaccine),
		Retryable: false,
		Metadata:  map[string]interface{}{"vaccine": vaccine},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidDoseDateError(value string, err error) *StandardError {
	details := fmt.Sprintf("dose1_date: %q", value)
	if err != nil {
		details = fmt.Sprintf("%s, error: %s", details, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeInvalidDoseDate,
		Message:   "Dose 1 date missing or malformed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"dose1Date": value},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewIndexOutOfRangeError is the SelectionError raised for a 1-based index
// outside [1, max].
func NewIndexOutOfRangeError(index, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexOutOfRange,
		Message:   "Selected index is out of range",
		Details:   fmt.Sprintf("index %d not in [1, %d]", index, max),
		Retryable: false,
		Metadata:  map[string]interface{}{"index": index, "max": max},
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptyInputError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyInput,
		Message:   "Operation requires at least one beneficiary",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
	}
}

func NewSelectionInconsistentError(rule string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSelectionInconsistent,
		Message:   "Selected beneficiaries cannot be booked together",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"rule": rule},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(input string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Could not understand input",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"input": input},
		Timestamp: time.Now().UTC(),
	}
}

func NewBookingFailedError(statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingFailed,
		Message:   "Appointment booking was rejected",
		Details:   fmt.Sprintf("status %d", statusCode),
		Retryable: false,
		Metadata: map[string]interface{}{
			"statusCode": statusCode,
			"body":       body,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Configuration is invalid",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Inspection Helpers
// ==========================

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// StatusCode returns the HTTP status carried by a fetch or booking error, or 0.
func StatusCode(err error) int {
	stdErr, ok := AsStandardError(err)
	if !ok || stdErr.Metadata == nil {
		return 0
	}
	if code, ok := stdErr.Metadata["statusCode"].(int); ok {
		return code
	}
	return 0
}

// Body returns the response body carried by a fetch or booking error.
func Body(err error) string {
	stdErr, ok := AsStandardError(err)
	if !ok || stdErr.Metadata == nil {
		return ""
	}
	body, _ := stdErr.Metadata["body"].(string)
	return body
}

// ExitCodes maps error codes to process exit statuses.
var ExitCodes = map[ErrorCode]int{
	ErrCodeConfigInvalid:         2,
	ErrCodeFetchFailed:           3,
	ErrCodeTransportFailed:       3,
	ErrCodeInvalidPayload:        3,
	ErrCodeIndexOutOfRange:       4,
	ErrCodeInvalidInput:          4,
	ErrCodeEmptyInput:            4,
	ErrCodeSelectionInconsistent: 4,
	ErrCodeUnknownVaccine:        5,
	ErrCodeInvalidDoseDate:       5,
	ErrCodeBookingFailed:         6,
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if stdErr, ok := AsStandardError(err); ok {
		if code, exists := ExitCodes[stdErr.Code]; exists {
			return code
		}
	}
	return 1
}
