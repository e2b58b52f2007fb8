package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionInFlight is returned when a draft is submitted while an
	// earlier submission of the same draft has not finished.
	ErrSubmissionInFlight = errors.New("booking: submission already in progress")

	// ErrNoAdapter is returned when the orchestrator has nowhere to send bookings.
	ErrNoAdapter = errors.New("booking: no booking adapter configured")
)

// SubmissionError reports a failed call to the external booking platform.
// Transient and permanent failures are not told apart, so every submission
// error is retryable with the same draft.
type SubmissionError struct {
	Adapter   string
	Retryable bool
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("booking: %s submission failed: %v", e.Adapter, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a SubmissionError the client may retry.
func IsRetryable(err error) bool {
	var subErr *SubmissionError
	return errors.As(err, &subErr) && subErr.Retryable
}
