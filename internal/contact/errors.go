package contact

import "errors"

var (
	// ErrUnknownField is returned for field names outside the form.
	ErrUnknownField = errors.New("unknown contact field")

	// ErrInvalidForm is returned by Submit when at least one field fails
	// validation. No message is sent.
	ErrInvalidForm = errors.New("contact form has invalid fields")

	// ErrSubmissionInFlight is returned when a submission is already being
	// sent. The call has no effect.
	ErrSubmissionInFlight = errors.New("contact submission already in flight")

	// ErrSubmissionFailed wraps any failure of the outbound call, whether the
	// endpoint rejected the message or it never arrived.
	ErrSubmissionFailed = errors.New("contact submission failed")

	// ErrClosed is returned by a controller after Close.
	ErrClosed = errors.New("contact controller closed")
)
