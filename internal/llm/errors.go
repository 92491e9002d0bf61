package llm

import "errors"

// Failure classes for completion calls. Callers match these with errors.Is
// to turn gateway failures into user-facing replies.
var (
	ErrUnavailable     = errors.New("llm: service unavailable")
	ErrRateLimited     = errors.New("llm: rate limited")
	ErrInvalidResponse = errors.New("llm: invalid response")
)
