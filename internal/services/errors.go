package services

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrEntryLimitReached = errors.New("journal entry limit reached")
	ErrNoResponder       = errors.New("ai responder is not configured")
)
