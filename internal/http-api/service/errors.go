package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
)

// ServerError wraps any failure that is not one of the sentinel conditions.
// Err carries the diagnostic detail; Op names the operation that failed.
type ServerError struct {
	Op  string
	Err error
}

func (e *ServerError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// Detail is the underlying message exposed to API clients for diagnostics.
func (e *ServerError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// wrap passes sentinel errors through and turns everything else into a ServerError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return err
	}
	return &ServerError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized,
		ErrForbidden, ErrInvalidCredentials, ErrWrongPassword, ErrInvalidToken,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// isDuplicateKey detects unique-constraint violations from PostgreSQL
// (SQLSTATE 23505) or from gorm's translated error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
