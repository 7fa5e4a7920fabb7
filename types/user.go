package types

import "time"

// User represents an account in the system.
// The email address is the unique login identifier.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's unique email address, used as the login identifier.
	Email string `json:"email" db:"email"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// IsActive reports whether the account is enabled. Disabled accounts
	// keep their credentials but cannot authenticate.
	IsActive bool `json:"is_active" db:"is_active"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
