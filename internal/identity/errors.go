package identity

import (
	"fmt"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Identity errors.
var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", domain.ErrNotFound)
	ErrEmailExists        = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", domain.ErrAuth)
	ErrCannotDeleteSelf   = fmt.Errorf("%w: admins cannot delete their own account", domain.ErrValidation)
	ErrAdminOnly          = fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
)
