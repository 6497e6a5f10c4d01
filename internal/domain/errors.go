package domain

import "errors"

// Error kinds shared by every module. Module-level errors wrap one of these
// with fmt.Errorf("%w: ...") so callers can match either the precise error or
// its kind with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrRepository = errors.New("repository error")
	ErrAuth       = errors.New("authentication error")
	ErrTimeout    = errors.New("timeout")
)
