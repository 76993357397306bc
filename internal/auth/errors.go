package auth

import (
	"errors"
	"fmt"
)

// ErrAuth is the parent of every token validation failure.
var ErrAuth = errors.New("auth")

var (
	ErrTokenMissing = fmt.Errorf("%w: no token provided", ErrAuth)
	ErrTokenInvalid = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrAuth)
)
