package usecase

import (
	"errors"
	"fmt"
	"strings"

	"seat-reservation/pkg/utils"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrQuotaExceeded    = errors.New("seat quota exceeded")
	ErrSeatsUnavailable = errors.New("seats unavailable")
	ErrOrderNotFound    = errors.New("order not found")
	// ErrInternal marks storage or transport failures. The caller may retry.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	return "invalid request: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

type QuotaExceededError struct {
	Already   int
	Requested int
	Max       int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("seat quota exceeded: already holds %d, requested %d, max %d", e.Already, e.Requested, e.Max)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

type SeatsUnavailableError struct {
	SeatIDs []string
}

func (e *SeatsUnavailableError) Error() string {
	return "seats unavailable: " + strings.Join(e.SeatIDs, ", ")
}

func (e *SeatsUnavailableError) Unwrap() error { return ErrSeatsUnavailable }

// internalError keeps the storage cause for logs while matching ErrInternal.
type internalError struct {
	op  string
	err error
}

func (e *internalError) Error() string { return e.op + ": " + e.err.Error() }

func (e *internalError) Unwrap() []error { return []error{ErrInternal, e.err} }

func wrapInternal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &internalError{op: op, err: err}
}
