package queue

import "errors"

var (
	ErrNotFound         = errors.New("song not found")
	ErrValidation       = errors.New("validation error")
	ErrForbidden        = errors.New("song belongs to another guest")
	ErrUserSilenced     = errors.New("guest is silenced")
	ErrPastClosing      = errors.New("no more requests accepted today")
	ErrNoTimeBudget     = errors.New("not enough time before closing")
	ErrDuplicateInTable = errors.New("track already queued for this table")
	ErrNotQueued        = errors.New("song is not in the queue")
	// ErrInvalidState marks a transition attempted on a song whose state
	// forbids it (terminal, or already past the requested state).
	ErrInvalidState = errors.New("invalid song state transition")
)
