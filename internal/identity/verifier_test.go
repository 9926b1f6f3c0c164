package identity

import (
	"context"
	"errors"
	"testing"
)

func TestAllowAnyAcceptsWellFormedCredentials(t *testing.T) {
	v := AllowAny{}
	if err := v.VerifyCredentials(context.Background(), "acme", "u@acme.io", "x"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAllowAnyRejectsMalformedCredentials(t *testing.T) {
	v := AllowAny{}
	cases := []struct {
		organization, email, password string
	}{
		{"", "u@acme.io", "x"},
		{"acme", "", "x"},
		{"acme", "u@acme.io", ""},
		{"acme", "not-an-email", "x"},
		{"acme", "@acme.io", "x"},
		{"acme", "u@", "x"},
	}
	for _, tc := range cases {
		if err := v.VerifyCredentials(context.Background(), tc.organization, tc.email, tc.password); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q/%q: expected ErrInvalidInput, got %v", tc.organization, tc.email, err)
		}
	}
}

func TestStaticVerifiesKnownAccount(t *testing.T) {
	v := NewStatic(map[string]string{"acme/u@acme.io": "pw"})

	if err := v.VerifyCredentials(context.Background(), "acme", "u@acme.io", "pw"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := v.VerifyCredentials(context.Background(), "acme", "u@acme.io", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := v.VerifyCredentials(context.Background(), "other", "u@acme.io", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown organization, got %v", err)
	}
}

func TestPostgresWithoutDBIsUnavailable(t *testing.T) {
	v := NewPostgres(nil)
	if err := v.VerifyCredentials(context.Background(), "acme", "u@acme.io", "pw"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
