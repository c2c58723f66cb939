package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by DomainError.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeTicketNotAvailable  = "TICKET_NOT_AVAILABLE"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInvalidCoordinate   = "INVALID_COORDINATE"
	CodeLocationUnavailable = "LOCATION_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewTicketNotAvailable signals a claim attempt on a ticket that is no
// longer Open. Recoverable; the worker picks another task.
func NewTicketNotAvailable(ticketID string) error {
	return NewDomainError(CodeTicketNotAvailable, "ticket is no longer available", http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

// NewInvalidTransition signals a resolve or assign attempt from a disallowed
// source state.
func NewInvalidTransition(ticketID string, from, to string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("ticket cannot move from %s to %s", from, to), http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "from": from, "to": to})
}

// NewInvalidCoordinate signals a coordinate outside the valid WGS84 domain.
func NewInvalidCoordinate(lat, lon float64) error {
	return NewDomainError(CodeInvalidCoordinate, "coordinate out of range", http.StatusBadRequest,
		map[string]any{"latitude": lat, "longitude": lon})
}

// NewLocationUnavailable signals that no position could be determined for
// the worker requesting nearby tasks.
func NewLocationUnavailable(workerID string) error {
	return NewDomainError(CodeLocationUnavailable, "worker location unavailable", http.StatusFailedDependency,
		map[string]any{"worker_id": workerID})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
