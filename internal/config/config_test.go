package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_AppliesTokenTTLDefaults(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		Auth:  AuthConfig{Secret: "secret"},
		Store: StoreConfig{Type: "memory"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL != 60*time.Minute {
		t.Fatalf("expected 60m access TTL default, got %v", c.Auth.AccessTokenTTL)
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		t.Fatalf("expected refresh TTL beyond access TTL, got %v", c.Auth.RefreshTokenTTL)
	}
	if c.Identity.Mode != "none" {
		t.Fatalf("expected identity mode none default, got %q", c.Identity.Mode)
	}
}

func TestValidate_LocalStoreRequiresURI(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		Auth:  AuthConfig{Secret: "secret"},
		Store: StoreConfig{Type: "local"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for local store without STORE_URI")
	}
}

func TestValidate_RejectsUnknownStoreType(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		Auth:  AuthConfig{Secret: "secret"},
		Store: StoreConfig{Type: "s3"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unsupported store type")
	}
}

func TestValidate_PostgresIdentityRequiresDB(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Auth:     AuthConfig{Secret: "secret"},
		Store:    StoreConfig{Type: "memory"},
		Identity: IdentityConfig{Mode: "postgres"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for postgres identity without DB config")
	}
}

func TestValidate_PostgresIdentityDefaultsSSLMode(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Auth:     AuthConfig{Secret: "secret"},
		Store:    StoreConfig{Type: "memory"},
		Identity: IdentityConfig{Mode: "postgres"},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "artifacts"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_UploadCapRequiresRedis(t *testing.T) {
	c := Config{
		App:    AppConfig{Env: "local", Port: 8080},
		Auth:   AuthConfig{Secret: "secret"},
		Store:  StoreConfig{Type: "memory"},
		Limits: LimitsConfig{UploadConcurrency: 4},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for upload cap without Redis config")
	}
}
