package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return errors.Wrap(ErrInvalidInput, "title and content are required")
	}
	return nil
}

func (in PostInput) published() bool {
	return in.Published == nil || *in.Published
}

// CreatePost stores a new post owned by ownerID
func (s *Storage) CreatePost(ctx context.Context, ownerID int64, in PostInput) (*Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := &Post{
		Title:     in.Title,
		Content:   in.Content,
		Published: in.published(),
		CreatedAt: s.now().UTC(),
		OwnerID:   ownerID,
	}
	err := s.update(ctx, func(tx *bolt.Tx) error {
		posts := tx.Bucket(bktPosts)
		seq, err := posts.NextSequence()
		if err != nil {
			return errors.Wrap(err, "failed to allocate post id")
		}
		post.ID = int64(seq)
		return errors.Wrap(putJSON(posts, int64ToBytes(post.ID), post), "failed to put post")
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns the post with the given id
func (s *Storage) GetPost(ctx context.Context, id int64) (*Post, error) {
	var post Post
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return getPost(tx.Bucket(bktPosts), id, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns posts in creation order whose title contains opts.Search
func (s *Storage) ListPosts(ctx context.Context, opts ListOptions) ([]Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	search := strings.ToLower(opts.Search)

	result := []Post{}
	err := s.view(ctx, func(tx *bolt.Tx) error {
		skipped := 0
		c := tx.Bucket(bktPosts).Cursor()
		for k, v := c.First(); k != nil && len(result) < limit; k, v = c.Next() {
			var post Post
			if err := json.Unmarshal(v, &post); err != nil {
				return errors.Wrapf(err, "failed to decode post %d", bytesToInt64(k))
			}
			if search != "" && !strings.Contains(strings.ToLower(post.Title), search) {
				continue
			}
			if skipped < opts.Skip {
				skipped++
				continue
			}
			result = append(result, post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePost replaces the writable fields of a post owned by userID
func (s *Storage) UpdatePost(ctx context.Context, id, userID int64, in PostInput) (*Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var post Post
	err := s.update(ctx, func(tx *bolt.Tx) error {
		posts := tx.Bucket(bktPosts)
		if err := getOwnedPost(posts, id, userID, &post); err != nil {
			return err
		}
		post.Title = in.Title
		post.Content = in.Content
		post.Published = in.published()
		return errors.Wrap(putJSON(posts, int64ToBytes(id), &post), "failed to put post")
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post owned by userID
func (s *Storage) DeletePost(ctx context.Context, id, userID int64) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		posts := tx.Bucket(bktPosts)
		var post Post
		if err := getOwnedPost(posts, id, userID, &post); err != nil {
			return err
		}
		return errors.Wrap(posts.Delete(int64ToBytes(id)), "failed to delete post")
	})
}

func getPost(posts *bolt.Bucket, id int64, post *Post) error {
	found, err := getJSON(posts, int64ToBytes(id), post)
	if err != nil {
		return errors.Wrapf(err, "failed to get post %d", id)
	}
	if !found {
		return errors.Wrapf(ErrNotFound, "post %d", id)
	}
	return nil
}

func getOwnedPost(posts *bolt.Bucket, id, userID int64, post *Post) error {
	if err := getPost(posts, id, post); err != nil {
		return err
	}
	if post.OwnerID != userID {
		return errors.Wrapf(ErrForbidden, "post %d belongs to another user", id)
	}
	return nil
}
