package errors

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single rule broken by an input field.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError represents a validation failure with field-level details.
// Violations keep the order in which the fields were checked.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Violations: []FieldViolation{{Field: field, Message: message}},
	}
}

// Add appends a violation to the error.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field != "" {
			parts[i] = fmt.Sprintf("%s %s", v.Field, v.Message)
		} else {
			parts[i] = v.Message
		}
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AlreadyExistsError represents a unique key collision in the store.
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// UnavailableError reports that the backing store could not be reached in time.
type UnavailableError struct {
	Op  string
	Err error
}

// NewUnavailableError creates a new unavailable error
func NewUnavailableError(op string, err error) *UnavailableError {
	return &UnavailableError{Op: op, Err: err}
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: store unavailable", e.Op)
}

// Unwrap returns the wrapped error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// ServiceError is returned by the service layer. Message is safe to show to clients;
// the underlying error, and with it the error kind, stays reachable through Unwrap.
type ServiceError struct {
	Op      string
	Message string
	Err     error
}

// NewServiceError wraps err for operation op with a message derived from the error kind.
func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Message: PublicMessage(err),
		Err:     err,
	}
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the wrapped error
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// PublicMessage returns a message for err that does not leak store internals.
func PublicMessage(err error) string {
	switch e := err.(type) {
	case nil:
		return ""
	case *ServiceError:
		return e.Message
	case *ValidationError:
		return e.Error()
	case *AlreadyExistsError:
		return e.Error()
	case *NotFoundError:
		return e.Error()
	case *UnavailableError:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}
