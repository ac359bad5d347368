package crypto

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// ErrWeakPassword wraps every password policy violation.
var ErrWeakPassword = errors.New("weak password")

// HashPassword returns the bcrypt hash stored in users.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(password string) charClasses {
	var c charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			c.special = true
		}
	}
	return c
}

// ValidatePasswordStrength reports the first policy rule password breaks.
// Length is counted in runes.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: needs at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	c := classify(password)
	switch {
	case !c.upper:
		return fmt.Errorf("%w: needs an uppercase letter", ErrWeakPassword)
	case !c.lower:
		return fmt.Errorf("%w: needs a lowercase letter", ErrWeakPassword)
	case !c.digit:
		return fmt.Errorf("%w: needs a digit", ErrWeakPassword)
	case !c.special:
		return fmt.Errorf("%w: needs a punctuation or symbol character", ErrWeakPassword)
	}
	return nil
}
