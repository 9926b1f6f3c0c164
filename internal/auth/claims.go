package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Tenancy invariant: Organization and Email must be present in every token;
// a token identifies a member of an organization, never a bare user.
type Claims struct {
	jwt.RegisteredClaims

	Organization string    `json:"organization"`
	Email        string    `json:"email"`
	TokenType    TokenType `json:"token_type"`
}
