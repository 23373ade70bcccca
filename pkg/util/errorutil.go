package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique_violation; surfaces when a check-then-insert loses a race
// with a concurrent insert.
const pgUniqueViolation = "23505"

// DomainError is the typed outcome every component returns for expected
// failures. Code is stable for callers to branch on; HTTPStatus is what the
// transport renders.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func newError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError rejects a malformed or incomplete request payload.
func NewValidationError(message string, details map[string]any) error {
	return newError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewNotFound signals that a referenced entity does not exist.
func NewNotFound(resource string, details map[string]any) error {
	return newError("NOT_FOUND", resource+" not found", http.StatusNotFound, details)
}

// NewUnauthorized signals missing or unusable credentials.
func NewUnauthorized(message string) error {
	return newError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

// NewForbidden signals an authenticated caller lacking the required role or
// ownership.
func NewForbidden(message string) error {
	return newError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewConflict signals a uniqueness violation.
func NewConflict(message string, details map[string]any) error {
	return newError("CONFLICT", message, http.StatusConflict, details)
}

// NewInvalidTransition signals an illegal ticket state change.
func NewInvalidTransition(from, to string) error {
	return newError("INVALID_TRANSITION",
		fmt.Sprintf("cannot transition ticket from %s to %s", from, to),
		http.StatusConflict,
		map[string]any{"from": from, "to": to})
}

// NewEmptyQueue signals that a queue has no waiting ticket to call.
func NewEmptyQueue(queueID string) error {
	return newError("EMPTY_QUEUE", "no waiting tickets in queue",
		http.StatusNotFound, map[string]any{"queue_id": queueID})
}

// NewTokenExpired signals a token past its expiry.
func NewTokenExpired() error {
	return newError("TOKEN_EXPIRED", "token expired", http.StatusUnauthorized, nil)
}

// NewTokenInvalid signals a malformed or badly signed token, or a token whose
// subject no longer resolves to a live user.
func NewTokenInvalid() error {
	return newError("TOKEN_INVALID", "invalid token", http.StatusUnauthorized, nil)
}

// NewStoreUnavailable signals a transient store failure; callers may retry.
func NewStoreUnavailable(err error) error {
	e := newError("STORE_UNAVAILABLE", "store temporarily unavailable", http.StatusServiceUnavailable, nil)
	e.Err = err
	return e
}

// NewInternalError wraps an unexpected fault.
func NewInternalError(err error) error {
	e := newError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError, nil)
	e.Err = err
	return e
}

// ToDomainError normalizes any error into a DomainError. pgx's no-rows
// sentinel becomes NOT_FOUND, a unique violation becomes CONFLICT, and
// everything else unknown is internal.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return newError("NOT_FOUND", "resource not found", http.StatusNotFound, nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return newError("CONFLICT", "duplicate value violates a uniqueness constraint",
			http.StatusConflict, map[string]any{"constraint": pgErr.ConstraintName})
	}
	e := newError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError, nil)
	e.Err = err
	return e
}

// MapError is ToDomainError in error-returning form for middleware use.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
