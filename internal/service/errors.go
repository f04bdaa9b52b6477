package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication credentials were not provided")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrConflict     = errors.New("conflict")
	ErrEmptyCart    = errors.New("shopping cart is empty")
	ErrInvalidToken = errors.New("invalid token")
)

// ConflictError rejects a state transition that would not change anything.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError collects messages per input field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError builds a ValidationError holding one message.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when nothing was collected.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// isUniqueViolation recognises duplicate-key failures from every driver we run on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
