package auth

import (
	"strings"
	"testing"
	"time"

	"artifact-cache/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		Secret:          "s3cr3t",
		Issuer:          "artifact-cache",
		AccessTokenTTL:  60 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := testManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Organization != "acme" || claims.Email != "u@acme.io" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	issued := claims.IssuedAt.Time
	expires := claims.ExpiresAt.Time
	if expires.Sub(issued) != time.Hour {
		t.Fatalf("expected 3600s lifetime, got %v", expires.Sub(issued))
	}
}

func TestVerifyHonorsExpiryWithoutLeeway(t *testing.T) {
	m := testManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(59*time.Minute)); err != nil {
		t.Fatalf("expected valid at 59m, got %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(61*time.Minute)); err == nil {
		t.Fatalf("expected expiry failure at 61m")
	}
}

func TestVerifyUsesCallerClockNotWallClock(t *testing.T) {
	m := testManager(t)

	// Issue in the wall-clock past so the token's whole validity window has
	// already elapsed in real time. Only the caller-supplied clock decides.
	issued := time.Now().Add(-2 * time.Hour).UTC()
	pair, err := m.IssuePair(issued, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, issued.Add(30*time.Minute)); err != nil {
		t.Fatalf("expected valid inside the issued window, got %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, issued.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expiry failure past the issued window")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	m := testManager(t)

	pair, err := m.IssuePair(time.Unix(1700000000, 0).UTC(), "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(pair.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWS, got %d segments", len(parts))
	}

	// The final base64url character carries padding bits that a lax decoder
	// ignores, so flip every position before it.
	sig := []byte(parts[2])
	for i := 0; i < len(sig)-1; i++ {
		flipped := byte('A')
		if sig[i] == 'A' {
			flipped = 'B'
		}
		orig := sig[i]
		sig[i] = flipped
		tampered := parts[0] + "." + parts[1] + "." + string(sig)
		if _, err := m.Verify(tampered, TokenTypeAccess, time.Unix(1700000060, 0).UTC()); err == nil {
			t.Fatalf("expected verification failure with signature byte %d flipped", i)
		}
		sig[i] = orig
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := testManager(t)
	other, err := NewManager(config.AuthConfig{Secret: "different", AccessTokenTTL: time.Hour, RefreshTokenTTL: 2 * time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	pair, err := other.IssuePair(now, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute)); err == nil {
		t.Fatalf("expected failure for token signed with another secret")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	unissued, err := NewManager(config.AuthConfig{Secret: "s3cr3t", AccessTokenTTL: time.Hour, RefreshTokenTTL: 2 * time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	m := testManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := unissued.IssuePair(now, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute)); err == nil {
		t.Fatalf("expected failure for missing issuer claim")
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := testManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, "acme", "u@acme.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(pair.RefreshToken, TokenTypeAccess, now.Add(time.Minute)); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
	if _, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now.Add(time.Minute)); err != nil {
		t.Fatalf("refresh token should verify as refresh: %v", err)
	}
}

func TestIssueRejectsEmptyIdentity(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	if _, err := m.IssuePair(now, "", "u@acme.io"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty organization, got %v", err)
	}
	if _, err := m.IssuePair(now, "acme", ""); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty email, got %v", err)
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
