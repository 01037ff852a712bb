package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrLikeNotFound       = errors.New("like not found")
	ErrNotFollowing       = errors.New("not following")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not allowed")
	ErrUserTaken          = errors.New("email or username already taken")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAlreadyLiked       = errors.New("post already liked")
	ErrAlreadyFollowing   = errors.New("already following")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrNoPosts            = errors.New("no posts found")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError reports malformed or missing input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
