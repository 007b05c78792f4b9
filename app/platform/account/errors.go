package account

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrWeakPassword is wrapped with the first failing policy rule.
	ErrWeakPassword        = errors.New("weak password")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidRole         = errors.New("invalid role")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileAlreadyBound = errors.New("profile already bound to account")

	// ErrInvalidCredentials deliberately covers both unknown email and
	// wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountInactive    = errors.New("account not active")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	ErrUnauthorized = errors.New("unauthorized")
)
