// Package apperr carries the error taxonomy the HTTP layer maps to status
// codes. Domain code returns these; handlers never invent status codes on
// their own.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(msg string) *Error { return E(KindValidation, msg) }

func Unauthenticated(msg string) *Error { return E(KindUnauthenticated, msg) }

func Forbidden(msg string) *Error { return E(KindForbidden, msg) }

func NotFound(msg string) *Error { return E(KindNotFound, msg) }

func Conflict(msg string) *Error { return E(KindConflict, msg) }

// KindOf extracts the kind from an error chain. Anything that is not an
// *Error is treated as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err. Internal errors are
// masked so storage details never reach the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal server error"
}

// FromPostgres translates storage-level constraint violations into the
// taxonomy. Unique violations become conflicts; everything else stays an
// internal error.
func FromPostgres(err error, conflictMsg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Wrap(KindConflict, conflictMsg, err)
	}
	return err
}
