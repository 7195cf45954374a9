package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrVoteNotFound   = errors.New("vote not found")
	ErrVoteExists     = errors.New("vote already exists")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrRateLimited    = errors.New("vote rate limit exceeded")
	ErrBadCursor      = errors.New("malformed feed cursor")
	ErrBadDirection   = errors.New("invalid vote direction")
	ErrBadLimit       = errors.New("feed limit must be positive")
)
