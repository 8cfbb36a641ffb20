package store

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a blog entry owned by the user who created it
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   int64     `json:"owner_id"`
}

// PostInput carries the writable fields of a post. A nil Published means true.
type PostInput struct {
	Title     string
	Content   string
	Published *bool
}

// ListOptions pages and filters ListPosts
type ListOptions struct {
	Limit  int
	Skip   int
	Search string
}

// DefaultListLimit applies when ListOptions.Limit is not positive
const DefaultListLimit = 10
