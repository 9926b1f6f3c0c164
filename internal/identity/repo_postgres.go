package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// NOTE: This verifier assumes the following table exists:
//
//	CREATE TABLE users (
//	    organization  TEXT NOT NULL,
//	    email         TEXT NOT NULL,
//	    password_hash TEXT NOT NULL,  -- bcrypt
//	    PRIMARY KEY (organization, email)
//	);

// Postgres verifies credentials against bcrypt hashes in the users table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) VerifyCredentials(ctx context.Context, organization, email, password string) error {
	if err := checkShape(organization, email, password); err != nil {
		return err
	}
	if p.db == nil {
		return ErrUnavailable
	}

	const q = `
SELECT password_hash
FROM users
WHERE organization = $1 AND email = $2
`
	var hash string
	if err := p.db.QueryRowContext(ctx, q, organization, email).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a comparison anyway so absent accounts cost the same
			// as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// bcrypt hash of an unguessable throwaway value, used to equalize timing.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

var _ Verifier = (*Postgres)(nil)
var _ Verifier = (*Static)(nil)
var _ Verifier = AllowAny{}
