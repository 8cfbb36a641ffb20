package jwtauth

import (
	"context"
	"fmt"
)

// Stage is a point in the per-request authentication state machine.
// A request starts at StageNoToken and ends at StageUserResolved or StageRejected.
type Stage string

const (
	StageNoToken          Stage = "no_token"
	StageTokenPresented   Stage = "token_presented"
	StageDecoded          Stage = "decoded"
	StageSubjectExtracted Stage = "subject_extracted"
	StageUserResolved     Stage = "user_resolved"
	StageRejected         Stage = "rejected"
)

// UserLookup fetches a user by integer id.
// A nil user with a nil error means no such user exists.
type UserLookup[U any] interface {
	FindByID(ctx context.Context, id int64) (*U, error)
}

// UserLookupFunc adapts a function to UserLookup
type UserLookupFunc[U any] func(ctx context.Context, id int64) (*U, error)

// FindByID calls f(ctx, id)
func (f UserLookupFunc[U]) FindByID(ctx context.Context, id int64) (*U, error) {
	return f(ctx, id)
}

// Guard turns a raw bearer token into a resolved user or a uniform rejection
type Guard[U any] struct {
	codec *Codec
	users UserLookup[U]
}

// NewGuard creates a guard over the given codec and user store
func NewGuard[U any](codec *Codec, users UserLookup[U]) *Guard[U] {
	return &Guard[U]{codec: codec, users: users}
}

// Codec returns the codec the guard verifies tokens with
func (g *Guard[U]) Codec() *Codec {
	return g.codec
}

// Authenticate resolves the user a token was issued to.
// Token and subject failures, and an absent user, are all ErrUnauthorized.
// A store failure or a cancelled context is returned as-is and is not an authentication verdict.
func (g *Guard[U]) Authenticate(ctx context.Context, rawToken string) (*U, error) {
	a, err := g.authenticate(ctx, rawToken)
	return a.user, err
}

// attempt records how far one authentication got, for security logging
type attempt[U any] struct {
	user    *U
	subject string
	stage   Stage
}

func (g *Guard[U]) authenticate(ctx context.Context, rawToken string) (attempt[U], error) {
	a := attempt[U]{stage: StageNoToken}
	if rawToken == "" {
		return a, unauthorized(fmt.Errorf("no bearer token presented"))
	}
	a.stage = StageTokenPresented

	claims, err := g.codec.Decode(rawToken)
	if err != nil {
		return a, unauthorized(err)
	}
	a.stage = StageDecoded

	data, err := ParseTokenData(claims)
	if err != nil {
		return a, unauthorized(err)
	}
	id, err := data.ID()
	if err != nil {
		return a, unauthorized(fmt.Errorf("subject out of range: %w", err))
	}
	a.subject = data.UserID
	a.stage = StageSubjectExtracted

	if err := ctx.Err(); err != nil {
		return a, err
	}

	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		return a, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	if user == nil {
		return a, unauthorized(fmt.Errorf("user %d not found", id))
	}

	a.user = user
	a.stage = StageUserResolved
	return a, nil
}
