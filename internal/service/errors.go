package service

import "errors"

// Failure taxonomy surfaced to callers. No operation retries internally;
// retry/backoff policy belongs to callers or infrastructure.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrUpstream          = errors.New("ai engine failure")
)
