package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents client-input validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents lookups that resolved to no entity
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeCache represents cache store errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Validation Errors

// ErrValidation is returned when a required input is missing or malformed
type ErrValidation struct {
	*BaseError
	Field string
}

func NewValidation(field, reason string) *ErrValidation {
	return &ErrValidation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("%s: %s", field, reason), nil),
		Field:     field,
	}
}

// Not-Found Errors

// ErrNotFound is returned when a requested identifier resolves to no entity
type ErrNotFound struct {
	*BaseError
	Kind string
	ID   string
}

func NewNotFound(kind, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), nil),
		Kind:      kind,
		ID:        id,
	}
}

// Graph Errors

// ErrGraphNotConnected is returned when a query is issued before Connect
var ErrGraphNotConnected = NewBaseError(ErrorTypeGraph, "graph store not connected", nil)

// ErrGraphConnectionFailed is returned when the Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// Cache Errors

// ErrCacheUnavailable is returned when the cache store cannot be reached
type ErrCacheUnavailable struct {
	*BaseError
	Addr string
}

func NewCacheUnavailable(addr string, err error) *ErrCacheUnavailable {
	return &ErrCacheUnavailable{
		BaseError: NewBaseError(ErrorTypeCache, fmt.Sprintf("cache unavailable: %s", addr), err),
		Addr:      addr,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if typed, ok := err.(interface{ Base() *BaseError }); ok {
		return typed.Base().Type == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// Base exposes the embedded BaseError for type checks through IsErrorType
func (e *ErrValidation) Base() *BaseError           { return e.BaseError }
func (e *ErrNotFound) Base() *BaseError             { return e.BaseError }
func (e *ErrGraphConnectionFailed) Base() *BaseError { return e.BaseError }
func (e *ErrGraphQueryFailed) Base() *BaseError     { return e.BaseError }
func (e *ErrCacheUnavailable) Base() *BaseError     { return e.BaseError }
func (e *ErrConfigMissingRequired) Base() *BaseError { return e.BaseError }

// IsValidation reports whether err is a client-input validation error
func IsValidation(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}
