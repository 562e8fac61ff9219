package services

import "errors"

var (
	// ErrEntityNotFound means a slug, username or comment author did not
	// resolve.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrNoCurrentUser means the operation needs an authenticated viewer.
	ErrNoCurrentUser = errors.New("no current user")
	// ErrInvalidFollow means a user tried to follow themselves.
	ErrInvalidFollow = errors.New("cannot follow yourself")
)
