package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both
// failure paths of Authenticate do the same amount of work
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account. Emails are unique, case-insensitively.
func (s *Storage) CreateUser(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.Wrap(ErrInvalidInput, "email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	err = s.update(ctx, func(tx *bolt.Tx) error {
		emails := tx.Bucket(bktUserEmails)
		if emails.Get([]byte(email)) != nil {
			return errors.Wrapf(ErrAlreadyExists, "user with email %s", email)
		}

		users := tx.Bucket(bktUsers)
		seq, err := users.NextSequence()
		if err != nil {
			return errors.Wrap(err, "failed to allocate user id")
		}
		user.ID = int64(seq)

		if err := putJSON(users, int64ToBytes(user.ID), user); err != nil {
			return errors.Wrap(err, "failed to put user")
		}
		if err := emails.Put([]byte(email), int64ToBytes(user.ID)); err != nil {
			return errors.Wrap(err, "failed to put user email index")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns the user with the given id, or nil when there is none
func (s *Storage) FindByID(ctx context.Context, id int64) (*User, error) {
	var user *User
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var u User
		found, err := getJSON(tx.Bucket(bktUsers), int64ToBytes(id), &u)
		if err != nil {
			return errors.Wrapf(err, "failed to get user %d", id)
		}
		if found {
			user = &u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserByID is FindByID with ErrNotFound for a missing user
func (s *Storage) UserByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Wrapf(ErrNotFound, "user %d", id)
	}
	return user, nil
}

// FindByEmail returns the user registered under email
func (s *Storage) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)

	var user *User
	err := s.view(ctx, func(tx *bolt.Tx) error {
		id := tx.Bucket(bktUserEmails).Get([]byte(email))
		if id == nil {
			return errors.Wrapf(ErrNotFound, "user with email %s", email)
		}
		var u User
		found, err := getJSON(tx.Bucket(bktUsers), id, &u)
		if err != nil {
			return errors.Wrapf(err, "failed to get user %d", bytesToInt64(id))
		}
		if !found {
			return errors.Wrapf(ErrNotFound, "user %d", bytesToInt64(id))
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email and password pair.
// An unknown email and a wrong password both give ErrInvalidCredentials.
func (s *Storage) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to compare password")
	}
	return user, nil
}
