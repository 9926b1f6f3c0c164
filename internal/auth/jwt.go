package auth

import (
	"errors"
	"time"

	"artifact-cache/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidInput is returned when issuance is asked to sign claims that are
// structurally incomplete (empty organization or email).
var ErrInvalidInput = errors.New("auth: organization and email are required")

// ErrUnauthenticated is the single verification failure surface. Callers must
// not be able to distinguish a bad signature from an expired or malformed
// token, so every verification error collapses to this value.
var ErrUnauthenticated = errors.New("auth: token verification failed")

type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}

	return &Manager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

/* ===================== ISSUE TOKENS ===================== */

// IssuePair signs an access/refresh token pair for a member of an
// organization. Credential verification happens before this is called; the
// manager only turns an already-verified identity into tokens.
//
// No renewal protocol consumes the refresh token yet; it is issued so clients
// can hold it, and it verifies as TokenTypeRefresh, but nothing rotates it.
func (m *Manager) IssuePair(now time.Time, organization, email string) (TokenPair, error) {
	if organization == "" || email == "" {
		return TokenPair{}, ErrInvalidInput
	}

	access, err := m.issue(now, TokenTypeAccess, organization, email, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := m.issue(now, TokenTypeRefresh, organization, email, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

/* ===================== VERIFY TOKEN ===================== */

// Verify parses and validates a token string. Expiry is checked with zero
// leeway: a token is valid strictly within [issuedAt, expiresAt).
func (m *Manager) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	var claims Claims

	// The parser checks the signature only; claims validation is skipped so
	// the explicit validator below is the single authority on time, using
	// the caller's clock instead of the wall clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, ErrUnauthenticated
	}

	if claims.TokenType != expected {
		return Claims{}, ErrUnauthenticated
	}
	if claims.Organization == "" || claims.Email == "" {
		return Claims{}, ErrUnauthenticated
	}

	return claims, nil
}

/* ===================== INTERNAL ISSUE ===================== */

func (m *Manager) issue(
	now time.Time,
	tokenType TokenType,
	organization,
	email string,
	ttl time.Duration,
) (string, error) {

	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Organization: organization,
		Email:        email,
		TokenType:    tokenType,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
