package account

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// ErrEmptyPassword is returned when asked to hash an empty string.
var ErrEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadCredentials
		}
		return err
	}
	return nil
}

type bcryptHasher struct{}

// NewPasswordAuthenticator returns the bcrypt-backed hashing primitive.
func NewPasswordAuthenticator() PasswordAuthenticator {
	return bcryptHasher{}
}

func (bcryptHasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
