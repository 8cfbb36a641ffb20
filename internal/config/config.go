package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

// Settings is the process configuration, read once at startup
type Settings struct {
	Auth    AuthConfig
	HTTP    HTTPConfig
	GRPC    GRPCConfig
	Storage StorageConfig
	Logger  LoggerConfig
	Login   LoginConfig
}

// AuthConfig is the configuration for issuing and validating access tokens
type AuthConfig struct {
	SecretKey     string `env:"AUTH_SECRET_KEY,required,notEmpty"`
	Algorithm     string `env:"AUTH_ALGORITHM" envDefault:"HS256"`
	ExpiryMinutes int    `env:"JWT_EXPIRY_MINUTES" envDefault:"30"`
	CookieName    string `env:"AUTH_COOKIE_NAME"`
}

// HTTPConfig is the configuration for the REST API.
// X-Forwarded-For is only believed from TrustedProxies; empty trusts none.
type HTTPConfig struct {
	Addr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	Mode           string   `env:"GIN_MODE" envDefault:"release"`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// GRPCConfig is the configuration for the gRPC listener. An empty address disables it.
type GRPCConfig struct {
	Addr string `env:"GRPC_ADDR" envDefault:":50051"`
}

// StorageConfig is the configuration for the embedded database
type StorageConfig struct {
	Path string `env:"BOLT_PATH" envDefault:"blog.db"`
}

// LoggerConfig is the configuration for the process logger
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoginConfig throttles credential checks per client address
type LoginConfig struct {
	RatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	Burst         int `env:"LOGIN_BURST" envDefault:"5"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Settings, error) {
	// production environments may not have a .env file
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Settings{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Settings) validate() error {
	if s.Auth.ExpiryMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRY_MINUTES must be positive, got %d", s.Auth.ExpiryMinutes)
	}
	switch strings.ToLower(s.Logger.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", s.Logger.Format)
	}
	if s.Login.RatePerMinute <= 0 || s.Login.Burst <= 0 {
		return fmt.Errorf("login throttling requires a positive rate and burst")
	}
	return nil
}

// AuthOptions translates the auth settings into token codec options
func (s *Settings) AuthOptions(logger *slog.Logger) []jwtauth.ConfigOption {
	opts := []jwtauth.ConfigOption{
		jwtauth.WithSecret([]byte(s.Auth.SecretKey)),
		jwtauth.WithAlgorithm(s.Auth.Algorithm),
		jwtauth.WithExpiryMinutes(s.Auth.ExpiryMinutes),
	}
	if s.Auth.CookieName != "" {
		opts = append(opts, jwtauth.WithCookie(s.Auth.CookieName))
	}
	if logger != nil {
		opts = append(opts, jwtauth.WithLogger(logger))
	}
	return opts
}
