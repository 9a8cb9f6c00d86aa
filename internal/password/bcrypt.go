// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/modulehub/internal/model"
)

// maxLength is the number of bytes bcrypt actually hashes.
const maxLength = 72

var (
	ErrTooShort    = model.NewInputError("password is too short")
	ErrTooLong     = model.NewInputError("password is too long")
	ErrInvalidHash = errors.New("stored password hash is malformed")
)

// Policy restricts acceptable passwords.
type Policy struct {
	MinLength int
}

// Validate checks password against the policy.
func (p Policy) Validate(password string) error {
	if len([]rune(password)) < p.MinLength {
		return fmt.Errorf("%w: at least %d characters required", ErrTooShort, p.MinLength)
	}
	if len(password) > maxLength {
		return fmt.Errorf("%w: at most %d bytes allowed", ErrTooLong, maxLength)
	}
	return nil
}

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt hashes passwords with a fresh random salt per call.
type Bcrypt struct {
	cost      int
	policy    Policy
	dummyHash string
}

// NewBcrypt creates Bcrypt. Cost outside bcrypt bounds falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int, policy Policy) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		panic(fmt.Sprintf("failed to generate dummy password hash: %v", err))
	}

	return &Bcrypt{cost: cost, policy: policy, dummyHash: string(dummy)}
}

// DummyHash returns a hash of a random secret at the configured cost.
// Verifying against it takes as long as verifying a real stored hash.
func (b *Bcrypt) DummyHash() string {
	return b.dummyHash
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if err := b.policy.Validate(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify compares password with hash in constant time. A mismatch is not an error.
func (b *Bcrypt) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrHashTooShort), errors.As(err, new(bcrypt.InvalidHashPrefixError)), errors.As(err, new(bcrypt.HashVersionTooNewError)):
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}
