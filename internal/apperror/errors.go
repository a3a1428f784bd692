package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services wrap these with %w so callers and the HTTP
// error middleware can classify failures with errors.Is.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrConnectionFailure = errors.New("database connection failure")
	ErrQueryFailure      = errors.New("query failure")
	ErrCompletionFailure = errors.New("completion failure")
	ErrValidationFailure = errors.New("validation failure")
	ErrIdentityConflict  = errors.New("identity conflict")
	ErrUnverifiedAccount = errors.New("account not verified")
)

// Wrap annotates err with a kind while keeping both chains inspectable.
func Wrap(kind error, err error) error {
	if err == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Wrapf annotates a kind with a formatted message.
func Wrapf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// StatusCode maps an error kind to the HTTP status the API surfaces.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailure):
		return 400
	case errors.Is(err, ErrNotAuthenticated):
		return 401
	case errors.Is(err, ErrUnverifiedAccount):
		return 403
	case errors.Is(err, ErrIdentityConflict):
		return 409
	case errors.Is(err, ErrCompletionFailure):
		return 502
	case errors.Is(err, ErrConnectionFailure):
		return 503
	case errors.Is(err, ErrQueryFailure):
		return 500
	default:
		return 500
	}
}
