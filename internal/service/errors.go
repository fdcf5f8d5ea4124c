package service

import "fmt"

// Domain error taxonomy. Every rejected mutation returns one of these and
// leaves all state untouched; anything else bubbling out of a service is a
// storage-layer failure and maps to a 5xx.

// ValidationError rejects malformed input before any mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("validation failed: %s %s", field, msg)
	}
	return "validation failed"
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NotFoundError reports an unknown base/equipment/record reference.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func notFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// ConflictError covers blocked referential deletes, lost claim races, and
// transitions attempted from the wrong state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientStockError rejects any debit that would drive the on-hand
// quantity below zero.
type InsufficientStockError struct {
	BaseCode      string
	EquipmentCode string
	Requested     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s at %s for quantity %d",
		e.EquipmentCode, e.BaseCode, e.Requested)
}

// ForbiddenError reports an authorization gate denial.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }
