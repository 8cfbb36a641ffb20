package jwtauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies short-lived access tokens with a single shared secret.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	cfg    *Config
	parser *jwt.Parser
}

// NewCodec creates a codec bound to cfg
func NewCodec(cfg *Config) *Codec {
	return &Codec{
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{cfg.Algorithm()}),
			jwt.WithTimeFunc(cfg.clock),
			jwt.WithLeeway(cfg.ClockSkewLeeway()),
			jwt.WithExpirationRequired(),
		),
	}
}

// Config returns the configuration the codec was built with
func (c *Codec) Config() *Config {
	return c.cfg
}

// Encode copies claims, stamps exp = now + expiry and signs the result.
// Required keys are the caller's concern; a claim set without user_id still encodes.
func (c *Codec) Encode(claims Claims) (string, error) {
	toEncode := claims.clone()
	toEncode[ExpiryClaim] = jwt.NewNumericDate(c.cfg.now().Add(c.cfg.expiry))

	token := jwt.NewWithClaims(c.cfg.signingMethod, jwt.MapClaims(toEncode))
	signed, err := token.SignedString(c.cfg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature and expiry and returns the full claim set.
// Every failure is reported as ErrInvalidToken; the cause is only kept as Internal.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	token, err := c.parser.ParseWithClaims(tokenString, jwt.MapClaims{}, c.keyFunc)
	if err != nil {
		return nil, invalidToken(err)
	}
	if !token.Valid {
		return nil, invalidToken(nil)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, invalidToken(fmt.Errorf("unexpected claims type %T", token.Claims))
	}
	return Claims(mapClaims), nil
}

// keyFunc returns the secret only for the pinned HMAC method, which
// blocks algorithm confusion even if the parser's method list is bypassed
func (c *Codec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if token.Method.Alg() != c.cfg.signingMethod.Alg() {
		return nil, fmt.Errorf("algorithm confusion detected: token method %s does not match expected method %s",
			token.Method.Alg(), c.cfg.signingMethod.Alg())
	}
	return c.cfg.secret, nil
}
