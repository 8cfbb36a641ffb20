package jwtauth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is used when WithAlgorithm is not supplied
const DefaultAlgorithm = "HS256"

// DefaultExpiry is the access token lifetime used when WithExpiryMinutes is not supplied
const DefaultExpiry = 30 * time.Minute

// supportedAlgorithms lists the symmetric signing methods a Config may pin
var supportedAlgorithms = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Config holds immutable configuration for issuing and validating access tokens.
// It is built once at startup and shared by the Codec and Guard.
type Config struct {
	secret          []byte
	signingMethod   *jwt.SigningMethodHMAC
	expiry          time.Duration
	clock           func() time.Time
	clockSkewLeeway time.Duration
	cookieName      string
	logger          *slog.Logger
}

// ConfigOption is a functional option for configuring the codec and guard
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		signingMethod: jwt.SigningMethodHS256,
		expiry:        DefaultExpiry,
		clock:         time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 {
		return nil, NewValidationError(ErrConfigError, "a signing secret must be configured (use WithSecret)", nil)
	}
	if cfg.expiry <= 0 {
		return nil, NewValidationError(ErrConfigError, "token expiry must be positive", nil)
	}

	return cfg, nil
}

// WithSecret sets the shared secret used to sign and verify tokens
func WithSecret(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) == 0 {
			return fmt.Errorf("secret cannot be empty")
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithAlgorithm pins the signing algorithm by name (HS256, HS384 or HS512)
func WithAlgorithm(name string) ConfigOption {
	return func(c *Config) error {
		if strings.EqualFold(name, "none") {
			return fmt.Errorf("none algorithm is prohibited")
		}
		method, ok := supportedAlgorithms[name]
		if !ok {
			return fmt.Errorf("algorithm %q not supported (available: %s)", name, strings.Join(AvailableAlgorithms(), ", "))
		}
		c.signingMethod = method
		return nil
	}
}

// WithExpiryMinutes sets how long issued tokens remain valid
func WithExpiryMinutes(minutes int) ConfigOption {
	return func(c *Config) error {
		if minutes <= 0 {
			return fmt.Errorf("expiry minutes must be positive, got %d", minutes)
		}
		c.expiry = time.Duration(minutes) * time.Minute
		return nil
	}
}

// WithClock replaces the wall clock shared by Encode and Decode
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.clock = now
		return nil
	}
}

// WithClockSkew sets the tolerance applied to the exp check. The default is zero.
func WithClockSkew(skew time.Duration) ConfigOption {
	return func(c *Config) error {
		if skew < 0 {
			return fmt.Errorf("clock skew must be non-negative, got %v", skew)
		}
		c.clockSkewLeeway = skew
		return nil
	}
}

// WithCookie enables token extraction from a cookie with the given name
func WithCookie(cookieName string) ConfigOption {
	return func(c *Config) error {
		c.cookieName = cookieName
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// AvailableAlgorithms returns the algorithm names accepted by WithAlgorithm
func AvailableAlgorithms() []string {
	return []string{"HS256", "HS384", "HS512"}
}

func (c *Config) Algorithm() string {
	return c.signingMethod.Alg()
}

func (c *Config) Expiry() time.Duration {
	return c.expiry
}

func (c *Config) ClockSkewLeeway() time.Duration {
	return c.clockSkewLeeway
}

func (c *Config) CookieName() string {
	return c.cookieName
}

func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// now reads the configured clock
func (c *Config) now() time.Time {
	return c.clock()
}
