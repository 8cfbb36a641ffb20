package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCreateAndGetPost(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	post, err := s.CreatePost(ctx, 7, PostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.True(t, post.Published)
	assert.Equal(t, int64(7), post.OwnerID)
	assert.Equal(t, fixedNow, post.CreatedAt)

	draft, err := s.CreatePost(ctx, 7, PostInput{Title: "Draft", Content: "...", Published: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, draft.Published)

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, *post, *got)

	_, err = s.GetPost(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePostRequiresFields(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreatePost(context.Background(), 1, PostInput{Title: " ", Content: "body"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListPosts(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		title := fmt.Sprintf("post %d", i)
		if i%5 == 0 {
			title = fmt.Sprintf("Go tips %d", i)
		}
		_, err := s.CreatePost(ctx, 1, PostInput{Title: title, Content: "body"})
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		opts     ListOptions
		expected []int64
	}{
		{name: "default limit", opts: ListOptions{}, expected: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "limit and skip", opts: ListOptions{Limit: 3, Skip: 12}, expected: []int64{13, 14, 15}},
		{name: "search is case insensitive", opts: ListOptions{Search: "go TIPS"}, expected: []int64{5, 10, 15}},
		{name: "search with skip", opts: ListOptions{Search: "tips", Skip: 1, Limit: 1}, expected: []int64{10}},
		{name: "skip past end", opts: ListOptions{Skip: 100}, expected: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := s.ListPosts(ctx, tt.opts)
			require.NoError(t, err)

			ids := make([]int64, 0, len(posts))
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestUpdatePost(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	post, err := s.CreatePost(ctx, 1, PostInput{Title: "Old", Content: "old"})
	require.NoError(t, err)

	updated, err := s.UpdatePost(ctx, post.ID, 1, PostInput{Title: "New", Content: "new", Published: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.False(t, updated.Published)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	_, err = s.UpdatePost(ctx, post.ID, 2, PostInput{Title: "Hijack", Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdatePost(ctx, 99, 1, PostInput{Title: "Ghost", Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestDeletePost(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	post, err := s.CreatePost(ctx, 1, PostInput{Title: "Bye", Content: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeletePost(ctx, post.ID, 2), ErrForbidden)
	require.NoError(t, s.DeletePost(ctx, post.ID, 1))
	assert.ErrorIs(t, s.DeletePost(ctx, post.ID, 1), ErrNotFound)

	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
