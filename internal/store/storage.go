package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

var (
	bktUsers      = []byte("users")
	bktUserEmails = []byte("user_emails")
	bktPosts      = []byte("posts")
)

// Storage is a wrapper around bolt.DB holding users and posts
type Storage struct {
	db           *bolt.DB
	passwordCost int
	now          func() time.Time
}

// Option tunes a Storage
type Option func(*Storage)

// WithPasswordCost sets the bcrypt cost used for new password hashes
func WithPasswordCost(cost int) Option {
	return func(s *Storage) {
		s.passwordCost = cost
	}
}

// WithClock replaces the clock used for created_at timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// NewStorage opens (or creates) the database at path
func NewStorage(path string, opts ...Option) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	s := &Storage{
		db:           db,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bktUsers, bktUserEmails, bktPosts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the storage
func (s *Storage) Close() error {
	return s.db.Close()
}

// view runs fn in a read transaction unless ctx is already done.
// bbolt transactions cannot be interrupted once started.
func (s *Storage) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *Storage) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

func getJSON(b *bolt.Bucket, key []byte, v interface{}) (bool, error) {
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrap(err, "failed to decode record")
	}
	return true, nil
}

func putJSON(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode record")
	}
	return b.Put(key, data)
}

func int64ToBytes(i int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))
	return b
}

func bytesToInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
