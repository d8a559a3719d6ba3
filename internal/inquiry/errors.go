package inquiry

import "errors"

var (
	// ErrInvalidIntent is returned when an intent is not quote, contact, or callback.
	ErrInvalidIntent = errors.New("inquiry: invalid intent")

	// ErrInvalid marks user-correctable submission problems.
	ErrInvalid = errors.New("inquiry: invalid submission")
)

// ValidationError carries the message shown to the submitter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
