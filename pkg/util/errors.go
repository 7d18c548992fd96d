// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the quoting and serviceability core
var (
	ErrInput            = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrNotServiceable   = errors.New("route not serviceable")
	ErrPricingMiss      = errors.New("no rate for route")
	ErrCatalog          = errors.New("catalog unavailable")
	ErrWorker           = errors.New("worker computation failed")
	ErrTimeout          = errors.New("request deadline exceeded")
	ErrIntegrity        = errors.New("integrity violation")
	ErrValidationFailed = errors.New("validation failed")
)

// InputError reports a missing or malformed request field.
// The message is stable so callers can surface it verbatim.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: field %q %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInput
}

// NewInputError creates an input error for a request field
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

// CatalogError reports a failure to load or reach a catalog source
// (master pincode list, UTSF directory, or the vendor store).
type CatalogError struct {
	Source string
	Path   string
	Err    error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("catalog %s unavailable", e.Source)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CatalogError) Unwrap() error {
	return ErrCatalog
}

// NewCatalogError creates a catalog error
func NewCatalogError(source, path string, err error) *CatalogError {
	return &CatalogError{Source: source, Path: path, Err: err}
}

// IntegrityError reports a strict-mode block detected at serve time:
// a vendor file references a pincode absent from the master catalog.
type IntegrityError struct {
	VendorID string
	Pincode  int
	Zone     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: vendor %s serves phantom pincode %d (zone %s)", e.VendorID, e.Pincode, e.Zone)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// WorkerError captures a per-vendor computation failure at the worker
// boundary. It never propagates past the batch response.
type WorkerError struct {
	VendorName string
	Err        error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("quote for %s failed: %v", e.VendorName, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return ErrWorker
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
