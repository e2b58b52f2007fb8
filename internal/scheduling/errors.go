package scheduling

import (
	"errors"
	"fmt"
)

// ErrMissingBusinessID is returned when the client has no business id.
var ErrMissingBusinessID = errors.New("scheduling: business id is required")

// APIError is a structured non-2xx response from the scheduling system.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("scheduling API returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("scheduling API returned %d: %s", e.StatusCode, e.Message)
}

// Conflict reports whether the slot was taken or the idempotency key was
// reused with a different payload.
func (e *APIError) Conflict() bool { return e.StatusCode == 409 }
