// Package credential is the single point where account credentials are turned
// into stored form and compared at login.
package credential

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt = "bcrypt"
	SchemePlain  = "plain"
)

var (
	// ErrMismatch is returned by Verify when the presented credential does not match.
	ErrMismatch = errors.New("credential mismatch")
	// ErrTooLong is returned by Hash when the scheme cannot store the credential.
	ErrTooLong = errors.New("credential too long")
)

// MaxBcryptLength is the longest credential bcrypt accepts, in bytes.
const MaxBcryptLength = 72

// Verifier converts credentials to stored form and checks presented ones.
type Verifier interface {
	Hash(credential string) (string, error)
	Verify(stored, presented string) error
}

// New returns the Verifier for scheme. cost is only used by bcrypt; zero selects
// bcrypt.DefaultCost.
func New(scheme string, cost int) (Verifier, error) {
	switch scheme {
	case SchemeBcrypt, "":
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return Bcrypt{Cost: cost}, nil
	case SchemePlain:
		return Plain{}, nil
	default:
		return nil, fmt.Errorf("unknown credential scheme %q", scheme)
	}
}

// Bcrypt stores bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(credential string) (string, error) {
	if len(credential) > MaxBcryptLength {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLong, len(credential), MaxBcryptLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), b.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", ErrTooLong, err)
	}
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hashed), nil
}

// Verify fails with ErrMismatch for a wrong credential and also for a stored value
// that is not a bcrypt hash, such as a row written under the plain scheme.
func (Bcrypt) Verify(stored, presented string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%w: unreadable stored hash: %v", ErrMismatch, err)
	}
}

// Plain stores credentials verbatim and compares them in constant time. It exists
// for compatibility with databases populated by earlier deployments.
type Plain struct{}

func (Plain) Hash(credential string) (string, error) { return credential, nil }

func (Plain) Verify(stored, presented string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return ErrMismatch
	}
	return nil
}
