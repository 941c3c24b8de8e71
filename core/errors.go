package core

import "github.com/pkg/errors"

// FieldError pairs a form field with the message explaining why it was
// rejected.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports a failed domain-level guard. Fields carries
// per-field messages when the failure maps onto specific form fields;
// otherwise Err alone describes it.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown is an integrity error: the process reached a state it should not
// keep serving from, such as the upstream API answering with a shape the
// console cannot interpret.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether any error in err's cause chain asks for a
// graceful stop.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
