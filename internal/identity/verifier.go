package identity

import (
	"context"
	"errors"
	"strings"
)

// Verifier checks login credentials before the token service issues a pair.
// Implementations must treat the password as opaque: never log it, never
// store it in plaintext.

type Verifier interface {
	VerifyCredentials(ctx context.Context, organization, email, password string) error
}

var (
	// ErrInvalidCredentials covers unknown accounts and wrong passwords
	// alike; callers must not learn which.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrInvalidInput means the credentials are structurally malformed.
	ErrInvalidInput = errors.New("identity: organization, email, and password are required")

	// ErrUnavailable means the backing account store could not be reached.
	ErrUnavailable = errors.New("identity: account store unavailable")
)

func checkShape(organization, email, password string) error {
	if organization == "" || email == "" || password == "" {
		return ErrInvalidInput
	}
	// Minimal email shape check; full validation belongs to account signup.
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidInput
	}
	return nil
}

// AllowAny accepts any well-formed credentials. It exists so the gateway can
// run without an account store wired in; deployments that care about identity
// configure the Postgres verifier instead.
type AllowAny struct{}

func (AllowAny) VerifyCredentials(ctx context.Context, organization, email, password string) error {
	return checkShape(organization, email, password)
}

// Static verifies against a fixed account set. Useful for tests and local
// development; not intended for production use.
type Static struct {
	accounts map[string]string
}

// NewStatic builds a Static verifier from "organization/email" → password.
func NewStatic(accounts map[string]string) *Static {
	copied := make(map[string]string, len(accounts))
	for k, v := range accounts {
		copied[k] = v
	}
	return &Static{accounts: copied}
}

func (s *Static) VerifyCredentials(ctx context.Context, organization, email, password string) error {
	if err := checkShape(organization, email, password); err != nil {
		return err
	}
	want, ok := s.accounts[organization+"/"+email]
	if !ok || want != password {
		return ErrInvalidCredentials
	}
	return nil
}
