package jwtauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type testUser struct {
	ID    int64
	Email string
}

// memoryUsers returns a lookup over a fixed set of users
func memoryUsers(users ...testUser) UserLookupFunc[testUser] {
	byID := make(map[int64]testUser, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return func(ctx context.Context, id int64) (*testUser, error) {
		u, ok := byID[id]
		if !ok {
			return nil, nil
		}
		return &u, nil
	}
}

func newTestGuard(t testing.TB, now *time.Time, users UserLookup[testUser]) *Guard[testUser] {
	t.Helper()
	return NewGuard[testUser](newTestCodec(t, now), users)
}

// TestGuardResolvesExistingUser tests the success path
func TestGuardResolvesExistingUser(t *testing.T) {
	now := issueTime
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42, Email: "ada@example.com"}))

	tokenString := mustEncodeAs(t, guard.Codec(), "42")

	user, err := guard.Authenticate(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 42 || user.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
}

// TestGuardRejections tests every path that must end in ErrUnauthorized
func TestGuardRejections(t *testing.T) {
	now := issueTime
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))
	secret := []byte("s3cr3t")
	exp := issueTime.Add(time.Hour).Unix()

	noSubject, err := guard.Codec().Encode(Claims{"scope": "posts"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "No token", token: ""},
		{name: "Malformed token", token: "not.a.jwt"},
		{name: "Token without user_id", token: noSubject},
		{name: "Unknown user fails closed", token: mustEncodeAs(t, guard.Codec(), "7")},
		{name: "Empty subject", token: mustEncodeAs(t, guard.Codec(), "")},
		{name: "Non-numeric subject", token: mustEncodeAs(t, guard.Codec(), "abc")},
		{name: "Negative subject", token: mustEncodeAs(t, guard.Codec(), "-42")},
		{name: "Fractional subject string", token: mustEncodeAs(t, guard.Codec(), "4.2")},
		{name: "Overflowing subject", token: mustEncodeAs(t, guard.Codec(), "99999999999999999999")},
		{name: "Fractional numeric subject", token: signRaw(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"user_id": 4.2, "exp": exp})},
		{name: "Object subject", token: signRaw(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"user_id": map[string]any{"id": 42}, "exp": exp})},
		{name: "Null subject", token: signRaw(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"user_id": nil, "exp": exp})},
		{name: "Forged token", token: signRaw(t, jwt.SigningMethodHS256, []byte("guess"), jwt.MapClaims{"user_id": "42", "exp": exp})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := guard.Authenticate(context.Background(), tt.token)
			if !IsUnauthorized(err) {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
			if user != nil {
				t.Errorf("expected no user, got %+v", user)
			}
			if err.Error() != "[UNAUTHORIZED] could not validate credentials" {
				t.Errorf("expected fixed message, got %q", err.Error())
			}
		})
	}
}

// TestGuardExpiredToken tests that a token issued for an existing user stops working after expiry
func TestGuardExpiredToken(t *testing.T) {
	now := issueTime
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))

	tokenString := mustEncodeAs(t, guard.Codec(), "42")

	now = issueTime.Add(15*time.Minute + time.Second)
	if _, err := guard.Authenticate(context.Background(), tokenString); !IsUnauthorized(err) {
		t.Errorf("expected UNAUTHORIZED for expired token, got %v", err)
	}
}

// TestGuardNumericSubject tests that a JSON number subject is accepted
func TestGuardNumericSubject(t *testing.T) {
	now := issueTime
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))

	tokenString := signRaw(t, jwt.SigningMethodHS256, []byte("s3cr3t"), jwt.MapClaims{
		"user_id": 42,
		"exp":     issueTime.Add(time.Hour).Unix(),
	})

	user, err := guard.Authenticate(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("expected user 42, got %d", user.ID)
	}
}

// TestGuardLookupFailure tests that store errors are not reported as authentication failures
func TestGuardLookupFailure(t *testing.T) {
	now := issueTime
	storeErr := errors.New("disk on fire")
	guard := newTestGuard(t, &now, UserLookupFunc[testUser](func(ctx context.Context, id int64) (*testUser, error) {
		return nil, storeErr
	}))

	_, err := guard.Authenticate(context.Background(), mustEncodeAs(t, guard.Codec(), "42"))
	if err == nil {
		t.Fatal("expected error")
	}
	if IsUnauthorized(err) {
		t.Errorf("store failure reported as UNAUTHORIZED: %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error to be wrapped, got %v", err)
	}
}

// TestGuardCancelledContext tests that a cancelled request never reaches the store
func TestGuardCancelledContext(t *testing.T) {
	now := issueTime
	called := false
	guard := newTestGuard(t, &now, UserLookupFunc[testUser](func(ctx context.Context, id int64) (*testUser, error) {
		called = true
		return &testUser{ID: id}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, err := guard.Authenticate(ctx, mustEncodeAs(t, guard.Codec(), "42"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if user != nil {
		t.Errorf("expected no user, got %+v", user)
	}
	if called {
		t.Error("lookup should not run for a cancelled request")
	}
}

// TestGuardStages tests the state reached by each kind of request
func TestGuardStages(t *testing.T) {
	now := issueTime
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))

	noSubject, _ := guard.Codec().Encode(Claims{})

	tests := []struct {
		name  string
		token string
		want  Stage
	}{
		{name: "No token", token: "", want: StageNoToken},
		{name: "Bad token", token: "garbage", want: StageTokenPresented},
		{name: "No subject", token: noSubject, want: StageDecoded},
		{name: "Unknown user", token: mustEncodeAs(t, guard.Codec(), "1"), want: StageSubjectExtracted},
		{name: "Resolved", token: mustEncodeAs(t, guard.Codec(), "42"), want: StageUserResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := guard.authenticate(context.Background(), tt.token)
			if a.stage != tt.want {
				t.Errorf("expected stage %s, got %s", tt.want, a.stage)
			}
		})
	}
}

// TestGuardConcurrentUse tests that a shared guard needs no locking
func TestGuardConcurrentUse(t *testing.T) {
	now := issueTime
	users := make([]testUser, 0, 16)
	for i := int64(1); i <= 16; i++ {
		users = append(users, testUser{ID: i})
	}
	guard := newTestGuard(t, &now, memoryUsers(users...))

	tokens := make([]string, len(users))
	for i, u := range users {
		tokens[i] = mustEncodeAs(t, guard.Codec(), NewClaims(u.ID)["user_id"].(string))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(tokens)*8)
	for round := 0; round < 8; round++ {
		for i, tokenString := range tokens {
			wg.Add(1)
			go func(want int64, tokenString string) {
				defer wg.Done()
				user, err := guard.Authenticate(context.Background(), tokenString)
				if err != nil {
					errs <- err
					return
				}
				if user.ID != want {
					errs <- errors.New("resolved the wrong user")
				}
			}(users[i].ID, tokenString)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
