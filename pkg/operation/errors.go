package operation

import (
	"gitlab.com/tozd/go/errors"
)

// Error classes. Every error the engine produces matches exactly one of
// these with errors.Is.
var (
	ErrValidation = errors.Base("validation error")
	ErrIO         = errors.Base("io error")
	ErrEncoding   = errors.Base("encoding error")
)

// classError tags err with one of the classes above while keeping err's own
// chain reachable.
type classError struct {
	class error
	err   error
}

func (e *classError) Error() string {
	return e.class.Error() + ": " + e.err.Error()
}

func (e *classError) Unwrap() []error {
	return []error{e.class, e.err}
}

func classify(class, err error) error {
	return &classError{class: class, err: err}
}

func validationf(format string, args ...any) error {
	return classify(ErrValidation, errors.Errorf(format, args...))
}

// Code returns a short machine-readable name for err's class.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	default:
		return "internal"
	}
}
