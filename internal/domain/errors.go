// Package domain defines the shared value types and errors of the transform
// and predicate compiler.
package domain

import "fmt"

// NotFoundError indicates a stored resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidOperandError indicates an operand that fails operator validation,
// e.g. a list operand for a scalar-only operator or a missing BETWEEN bound.
type InvalidOperandError struct {
	Field    string
	Operator FieldOperator
	Message  string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand for %s %s: %s", e.Field, e.Operator, e.Message)
}

// UnsupportedFeatureError indicates a SQL feature was explicitly requested on
// a dialect that cannot emit it (e.g. UNPIVOT on postgres). Unlike alias
// conflicts this is fatal: the caller must not send the statement onward.
type UnsupportedFeatureError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("dialect %s does not support %s", e.Dialect, e.Feature)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidOperand creates an InvalidOperandError for the given field/operator.
func ErrInvalidOperand(field string, op FieldOperator, format string, args ...interface{}) *InvalidOperandError {
	return &InvalidOperandError{Field: field, Operator: op, Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedFeature creates an UnsupportedFeatureError.
func ErrUnsupportedFeature(dialect, feature string) *UnsupportedFeatureError {
	return &UnsupportedFeatureError{Dialect: dialect, Feature: feature}
}
