package auth

import "errors"

var (
	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password is wrong. The two cases are deliberately not
	// distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a token fails signature or payload
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrUnauthorized is the generic rejection surfaced to callers when a
	// bearer token cannot be resolved to a user. Token failures and unknown
	// subjects collapse into this one signal.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInactiveAccount is returned when a valid token resolves to a
	// disabled account. Safe to disclose: the caller already holds a valid
	// token for that account.
	ErrInactiveAccount = errors.New("inactive account")
)
