// Package swap holds the session state machine and the feedback aggregator.
// Everything here operates on model values and leaves persistence to the
// handler layer, which also maps these errors onto HTTP status codes.
package swap

// ValidationError rejects malformed input (400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError marks a missing user or session (404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthorizationError marks an action the actor may not perform (403).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// ConflictError marks an operation that already happened, such as a second
// feedback submission from the same side.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
