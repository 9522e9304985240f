// Package config loads and validates the service configuration from the
// environment. A .env file in the working directory is layered in first,
// then real environment variables win.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// Config holds all application configuration
type Config struct {
	// Environment: dev, staging, or prod (default: dev)
	Env string

	// Server port (default: 8080)
	Port string

	// Signing key shared by the login service and every verifier,
	// decoded from hex or base64. Never logged.
	SigningKey []byte

	// Ticket max age - how long a ticket stays valid (default: 24h)
	TicketMaxAge time.Duration

	// Ticket skew - tolerated future clock drift (default: 5m)
	TicketSkew time.Duration

	// Cookie name (default: sso_auth)
	CookieName string

	// Cookie domain - eTLD+1 like .example.com; empty means host-only
	CookieDomain string

	// Users file - path to the credential file (default: users.txt)
	UsersFile string

	// Allowed return hosts - hosts a post-login redirect may target
	ReturnHosts []string

	// Query params preserved on return URLs (default: utm_campaign, utm_source)
	ReturnParams []string

	// Login rate limit - requests per second per client IP (default: 1)
	LoginRate float64

	// Login burst - burst size per client IP (default: 5)
	LoginBurst int

	// Log level: debug, info, warn, error (default: info)
	LogLevel string

	// Enable HSTS - default false in dev, true in prod
	EnableHSTS bool
}

// FromEnv reads configuration from environment variables. A missing .env
// file is not an error.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Env = getEnv("ENV", "dev")
	cfg.Port = getEnv("PORT", "8080")

	if key := getEnv("SSO_SIGNING_KEY", ""); key != "" {
		var err error
		cfg.SigningKey, err = DecodeKey(key)
		if err != nil {
			return cfg, fmt.Errorf("invalid SSO_SIGNING_KEY: %w", err)
		}
	}

	var err error
	cfg.TicketMaxAge, err = parseDuration("SSO_MAX_AGE", "24h")
	if err != nil {
		return cfg, err
	}
	cfg.TicketSkew, err = parseDuration("SSO_CLOCK_SKEW", "5m")
	if err != nil {
		return cfg, err
	}

	cfg.CookieName = getEnv("COOKIE_NAME", security.AuthCookieName)
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", "")
	cfg.UsersFile = getEnv("USERS_FILE", "users.txt")

	cfg.ReturnHosts = parseCSV("RETURN_HOSTS")
	if params := parseCSV("RETURN_PARAMS"); len(params) > 0 {
		cfg.ReturnParams = params
	} else {
		cfg.ReturnParams = []string{"utm_campaign", "utm_source"}
	}

	cfg.LoginRate, err = parseFloat("LOGIN_RATE", 1)
	if err != nil {
		return cfg, err
	}
	cfg.LoginBurst, err = parseInt("LOGIN_BURST", 5)
	if err != nil {
		return cfg, err
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.EnableHSTS = parseBool("ENABLE_HSTS", cfg.Env == "prod")

	return cfg, nil
}

// Validate checks that required fields are set and enforces prod constraints
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required (set to a port number 1-65535, e.g., 8080)")
	}
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be a valid number 1-65535 (got %q)", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be 1-65535 (got %q)", c.Port)
	}

	if len(c.SigningKey) == 0 {
		return fmt.Errorf("SSO_SIGNING_KEY is required (generate a 32+ byte hex string)")
	}

	// COOKIE_DOMAIN is optional: empty means a host-only cookie, which is
	// what local development wants. A set value must be subdomain-sharing.
	if c.CookieDomain != "" {
		if !strings.HasPrefix(c.CookieDomain, ".") {
			return fmt.Errorf("COOKIE_DOMAIN must start with '.' for subdomain sharing (got %q, use %q)", c.CookieDomain, "."+c.CookieDomain)
		}
		if !strings.Contains(c.CookieDomain[1:], ".") {
			return fmt.Errorf("COOKIE_DOMAIN must contain a dot after the leading dot (got %q, expected format like '.example.com')", c.CookieDomain)
		}
	}

	if c.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME must not be empty")
	}

	if c.UsersFile == "" {
		return fmt.Errorf("USERS_FILE is required (path to the credential file)")
	}

	if c.TicketMaxAge <= 0 {
		return fmt.Errorf("SSO_MAX_AGE must be positive (got %v)", c.TicketMaxAge)
	}
	if c.TicketSkew < 0 {
		return fmt.Errorf("SSO_CLOCK_SKEW must be non-negative (got %v)", c.TicketSkew)
	}
	if c.TicketSkew > time.Hour {
		return fmt.Errorf("SSO_CLOCK_SKEW must not exceed 1 hour (got %v)", c.TicketSkew)
	}

	if c.LoginRate <= 0 {
		return fmt.Errorf("LOGIN_RATE must be positive (got %v)", c.LoginRate)
	}
	if c.LoginBurst < 1 {
		return fmt.Errorf("LOGIN_BURST must be at least 1 (got %d)", c.LoginBurst)
	}

	switch c.Env {
	case "dev", "staging", "prod":
		// valid
	default:
		return fmt.Errorf("ENV must be 'dev', 'staging', or 'prod' (got %q)", c.Env)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("LOG_LEVEL must be 'debug', 'info', 'warn', or 'error' (got %q)", c.LogLevel)
	}

	// Production-only constraints
	if c.Env == "prod" {
		if len(c.SigningKey) < 32 {
			return fmt.Errorf("in prod, SSO_SIGNING_KEY must be at least 32 bytes (got %d bytes)", len(c.SigningKey))
		}
		if c.CookieDomain == "" {
			return fmt.Errorf("in prod, COOKIE_DOMAIN is required (set to your domain with leading dot, e.g., .example.com)")
		}
		if !c.EnableHSTS {
			return fmt.Errorf("in prod, ENABLE_HSTS must not be disabled")
		}
	}

	return nil
}

// TicketOpts returns the verification window options for the core validator.
func (c Config) TicketOpts() security.TicketOpts {
	return security.TicketOpts{
		MaxAge: c.TicketMaxAge,
		Skew:   c.TicketSkew,
	}
}

// CookieOpts returns the cookie attributes for the auth cookie.
func (c Config) CookieOpts() security.CookieOpts {
	return security.CookieOpts{
		Name:     c.CookieName,
		Domain:   c.CookieDomain,
		Secure:   c.Env == "prod",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   c.TicketMaxAge,
	}
}

// BuildReturnPolicy creates the post-login redirect policy from the
// configuration. With no RETURN_HOSTS the policy allows nothing, and the
// login handler falls back to its JSON response.
func (c Config) BuildReturnPolicy() (*security.ReturnPolicy, error) {
	return security.NewReturnPolicy(c.ReturnHosts, c.ReturnParams)
}

// Helper functions

// getEnv returns the value of an environment variable or a default value
func getEnv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// parseCSV splits a CSV environment variable into a slice
// It trims spaces, converts to lowercase, deduplicates, and drops empty values
func parseCSV(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, p := range parts {
		trimmed := strings.TrimSpace(strings.ToLower(p))
		if trimmed != "" && !seen[trimmed] {
			seen[trimmed] = true
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDuration parses a duration environment variable with a default
func parseDuration(key, def string) (time.Duration, error) {
	value := getEnv(key, def)
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return dur, nil
}

// parseBool parses a boolean environment variable with a default
func parseBool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

// parseInt parses an integer environment variable with a default
func parseInt(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return parsed, nil
}

// parseFloat parses a float environment variable with a default
func parseFloat(key string, def float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return parsed, nil
}

// DecodeKey decodes a signing key from hex or base64 encoding. Shared with
// the ssocookie CLI so both sides accept the same key spellings.
func DecodeKey(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("signing key is empty")
	}

	// Try hex first (most common for keys)
	if decoded, err := hex.DecodeString(key); err == nil {
		return decoded, nil
	}

	// Try standard base64
	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil {
		return decoded, nil
	}

	// Try base64 URL encoding (no padding)
	if decoded, err := base64.RawURLEncoding.DecodeString(key); err == nil {
		return decoded, nil
	}

	return nil, fmt.Errorf("signing key must be valid hex or base64 encoding")
}
