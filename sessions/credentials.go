package sessions

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the fingerprint stored in place of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// IsFingerprint reports whether s is a bcrypt hash rather than a clear password.
func IsFingerprint(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// CheckPassword compares a password against a stored value. Stored clear text
// from old releases is compared directly.
func CheckPassword(password, stored string) bool {
	if IsFingerprint(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return password == stored
}

// CredentialsMatch reports whether the record was created with the given
// username and password.
func CredentialsMatch(r *Record, username, password string) bool {
	if r == nil {
		return false
	}
	return r.Uname == username && CheckPassword(password, r.Passw)
}
