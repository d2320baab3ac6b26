package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/accounts/internal/policy"
)

var (
	ErrInvalidPassword   = errors.New("invalid password")
	ErrPasswordTooLong   = errors.New("password exceeds maximum length of 72 bytes")
	ErrPasswordRequired  = errors.New("password is required")
	ErrInvalidBcryptCost = errors.New("invalid bcrypt cost")
)

// ValidateBcryptCost rejects costs bcrypt would silently replace or refuse.
func ValidateBcryptCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidBcryptCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password. The salt and cost are
// embedded in the returned hash.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if len(password) > policy.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := ValidateBcryptCost(cost); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// GenerateSessionSecret creates a random 32-byte secret for session signing.
func GenerateSessionSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
