package members

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/cleared-dev/bote/internal/model"
)

// ErrInvalidCredentials is returned for an unknown member or a wrong PIN.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPIN returns the bcrypt hash stored for a member's PIN.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 {
		return "", errors.New("pin must have at least 4 digits")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing pin: %w", err)
	}
	return string(h), nil
}

// Authenticator checks member PINs against the roster.
type Authenticator struct {
	roster *Service
}

// NewAuthenticator creates an Authenticator over roster.
func NewAuthenticator(roster *Service) *Authenticator {
	return &Authenticator{roster: roster}
}

// Authenticate returns the member identity when pin matches.
func (a *Authenticator) Authenticate(memberID int, pin string) (model.Member, error) {
	m, ok := a.roster.Get(memberID)
	if !ok || m.PINHash == "" {
		return model.Member{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PINHash), []byte(pin)); err != nil {
		return model.Member{}, ErrInvalidCredentials
	}
	return m, nil
}
