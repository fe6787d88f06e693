package domain

import "errors"

// ValidationError reports a missing or unparseable entry-form field. The
// stores are never touched when one is raised; the operation is a no-op.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
