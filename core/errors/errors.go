// Package errors provides standardized error types and helpers for the TallyBook codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrTypeMismatch indicates a value of the wrong kind reached an operation
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "demo", "aggregate", "dataset")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// UnknownColumnError reports a column name that is not part of a schema
// or grouping specification.
type UnknownColumnError struct {
	Column string // Column that could not be resolved
	Scope  string // Where it was looked up (e.g., "schema", "grouping spec")
	Err    error  // Underlying error, if any
}

func (e *UnknownColumnError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("unknown column %q in %s", e.Column, e.Scope)
	}
	return fmt.Sprintf("unknown column %q", e.Column)
}

func (e *UnknownColumnError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// SpecError represents a grouping or aggregate specification that could
// not be parsed or validated.
type SpecError struct {
	Input   string // The offending specification text
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *SpecError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid spec %q: %s", e.Input, e.Message)
	}
	return fmt.Sprintf("invalid spec: %s", e.Message)
}

func (e *SpecError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// AggregateError represents a failure inside an aggregate computation.
type AggregateError struct {
	Func    string // Aggregate function name (e.g., "SUM", "STRING_AGG")
	Column  string // Input column, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *AggregateError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s(%s): %s", e.Func, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Func, e.Message)
}

func (e *AggregateError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// TypeError represents a value kind mismatch, such as summing text.
type TypeError struct {
	Operation string // Operation being performed (e.g., "SUM", "compare")
	Want      string // Expected kind or kinds
	Got       string // Kind actually seen
	Err       error  // Underlying error, if any
}

func (e *TypeError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("%s: want %s, got %s", e.Operation, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: unexpected %s value", e.Operation, e.Got)
}

func (e *TypeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrTypeMismatch
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewUnknownColumn creates an UnknownColumnError
func NewUnknownColumn(column, scope string) *UnknownColumnError {
	return &UnknownColumnError{
		Column: column,
		Scope:  scope,
	}
}

// NewSpec creates a SpecError
func NewSpec(input, message string) *SpecError {
	return &SpecError{
		Input:   input,
		Message: message,
	}
}

// NewAggregate creates an AggregateError
func NewAggregate(fn, column, message string) *AggregateError {
	return &AggregateError{
		Func:    fn,
		Column:  column,
		Message: message,
	}
}

// NewType creates a TypeError
func NewType(operation, want, got string) *TypeError {
	return &TypeError{
		Operation: operation,
		Want:      want,
		Got:       got,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
