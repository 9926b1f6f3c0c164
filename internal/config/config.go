package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the gateway process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Store    StoreConfig
	Identity IdentityConfig
	DB       DBConfig
	Redis    RedisConfig
	Limits   LimitsConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type AuthConfig struct {
	Secret          string
	Issuer          string
	Audience        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// StoreConfig selects the artifact store backend.
// Type is currently "local" or "memory"; URI is the filesystem root for "local".
type StoreConfig struct {
	Type string
	URI  string
}

// IdentityConfig selects how login credentials are verified.
// Mode "none" accepts any well-formed credentials; "postgres" verifies
// against the users table and requires the DB section.
type IdentityConfig struct {
	Mode string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for managed-Postgres posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// LimitsConfig tunes request admission. UploadConcurrency is the maximum
// number of in-flight writes per organization; 0 disables the cap (and the
// Redis requirement with it).
type LimitsConfig struct {
	UploadConcurrency int
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Auth.Secret = os.Getenv("AUTH_SECRET")
	c.Auth.Issuer = strings.TrimSpace(os.Getenv("AUTH_ISSUER"))
	c.Auth.Audience = strings.TrimSpace(os.Getenv("AUTH_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.AccessTokenTTL = optionalDuration("AUTH_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = optionalDuration("AUTH_REFRESH_TTL")

	c.Store.Type = strings.ToLower(strings.TrimSpace(os.Getenv("STORE_TYPE")))
	c.Store.URI = strings.TrimSpace(os.Getenv("STORE_URI"))

	c.Identity.Mode = strings.ToLower(strings.TrimSpace(os.Getenv("IDENTITY_MODE")))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = optionalInt("DB_PORT")
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = optionalInt("REDIS_PORT")

	c.Limits.UploadConcurrency = optionalInt("UPLOAD_CONCURRENCY")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	}
	if c.IsProduction() && c.Auth.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER is required in production"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		// Access tokens expire an hour after issuance.
		c.Auth.AccessTokenTTL = 60 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must be greater than AUTH_ACCESS_TTL"))
	}

	switch c.Store.Type {
	case "":
		errs = append(errs, errors.New("STORE_TYPE is required"))
	case "local":
		if c.Store.URI == "" {
			errs = append(errs, errors.New("STORE_URI is required for STORE_TYPE=local"))
		}
	case "memory":
		// No URI needed.
	default:
		errs = append(errs, fmt.Errorf("STORE_TYPE must be one of local, memory, got %q", c.Store.Type))
	}

	switch c.Identity.Mode {
	case "":
		c.Identity.Mode = "none"
	case "none":
	case "postgres":
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required for IDENTITY_MODE=postgres"))
		}
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required for IDENTITY_MODE=postgres"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required for IDENTITY_MODE=postgres"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				// Local-friendly default; production must be explicit.
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_MODE must be one of none, postgres, got %q", c.Identity.Mode))
	}

	if c.Limits.UploadConcurrency < 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_CONCURRENCY must be >= 0, got %d", c.Limits.UploadConcurrency))
	}
	if c.Limits.UploadConcurrency > 0 {
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when UPLOAD_CONCURRENCY > 0"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optionalDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
