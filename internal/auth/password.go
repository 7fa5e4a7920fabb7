package auth

import "golang.org/x/crypto/bcrypt"

// placeholderHash is a structurally valid bcrypt hash that no password is
// expected to match. Login verifies against it when the email is unknown so
// that "no such user" and "wrong password" take comparable wall-clock time.
const placeholderHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword returns a salted bcrypt hash of the password. The same
// password yields a different hash on each call.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the password matches the bcrypt hash.
// A malformed hash counts as a mismatch, never a fault.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
