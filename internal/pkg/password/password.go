package password

import (
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8
)

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CompareDummy burns one bcrypt verification against a throwaway hash.
// Login calls it when the account does not exist, so lookups for unknown
// emails take as long as a real password check.
func CompareDummy() {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("clinic-pro-timing-pad"), DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte("not-the-pad"))
}

// Validate checks if a password meets the complexity requirements:
// at least MinLength characters with at least one letter and one digit.
func Validate(password string) bool {
	if len(password) < MinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
