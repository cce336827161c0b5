package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	// Generic codes
	CodeUnknown Code = "unknown"

	// Preference file errors
	CodeConfigurationError  Code = "configuration_error"
	CodeSerializationFailed Code = "serialization_failed"
	CodeValidationFailed    Code = "validation_failed"
	CodeNotFound            Code = "not_found"

	// Release feed errors
	CodeNetworkFailure Code = "network_failure"
	CodeInvalidVersion Code = "invalid_version"

	// Host errors
	CodeStartupFailed Code = "startup_failed"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
	// Fields holds per-field details for validation failures.
	Fields map[string]string
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// Validation builds a validation error carrying field details.
func Validation(msg string, fields map[string]string) Error {
	return Error{Code: CodeValidationFailed, Message: msg, Fields: fields}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// FieldsOf returns validation field details from the error chain, if any.
func FieldsOf(err error) map[string]string {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Fields
	}
	return nil
}
