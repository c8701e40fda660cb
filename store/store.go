// Package store persists users, posts and comments in MongoDB. Relationships
// are foreign-key references joined explicitly at read time; nothing is
// embedded except the like set on a post.
package store

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrContention reports an update that kept losing its conditional
	// write to concurrent updates of the same document. Retryable.
	ErrContention = errors.New("concurrent update contention")
)

// Sort orders accepted by PostStore.List.
const (
	SortLatest        = "latest"
	SortPopular       = "popular"
	SortMostCommented = "comments"
)
