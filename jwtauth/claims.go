package jwtauth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDClaim = "user_id" // subject of an access token
	ExpiryClaim = "exp"     // absolute expiry, seconds since epoch
)

// Claims is the flat, string-keyed claim set carried by an access token
type Claims map[string]any

// NewClaims returns claims naming the given user as subject
func NewClaims(userID int64) Claims {
	return Claims{UserIDClaim: strconv.FormatInt(userID, 10)}
}

// clone returns a shallow copy so callers' maps are never mutated
func (c Claims) clone() Claims {
	out := make(Claims, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ExpiresAt returns the exp claim, if present and numeric
func (c Claims) ExpiresAt() (time.Time, bool) {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenData is the schema-checked projection of decoded claims
type TokenData struct {
	UserID string `validate:"required,number"`
}

// ID converts the subject to the user-store key type
func (t TokenData) ID() (int64, error) {
	return strconv.ParseInt(t.UserID, 10, 64)
}

var tokenDataValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseTokenData extracts the subject claim and checks it against the TokenData schema.
// A missing subject, a non-scalar subject or one that is not a decimal identifier fails.
func ParseTokenData(claims Claims) (TokenData, error) {
	raw, ok := claims[UserIDClaim]
	if !ok || raw == nil {
		return TokenData{}, fmt.Errorf("missing %s claim", UserIDClaim)
	}

	subject, err := subjectString(raw)
	if err != nil {
		return TokenData{}, err
	}

	data := TokenData{UserID: subject}
	if err := tokenDataValidator.Struct(data); err != nil {
		return TokenData{}, fmt.Errorf("invalid %s claim: %w", UserIDClaim, err)
	}
	return data, nil
}

// subjectString coerces the scalar forms JSON decoding can produce
func subjectString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case float64:
		if s != math.Trunc(s) || math.IsInf(s, 0) {
			return "", fmt.Errorf("%s claim is not an integer", UserIDClaim)
		}
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case int:
		return strconv.Itoa(s), nil
	default:
		return "", fmt.Errorf("%s claim has unsupported type %T", UserIDClaim, v)
	}
}
