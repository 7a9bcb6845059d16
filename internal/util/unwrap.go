package util

import "github.com/pkg/errors"

// Unwrap strips stack trace wrappers and returns the error that caused err.
func Unwrap(err error) error {
	type hasUnderlying interface {
		Underlying() error
	}
	if eh, ok := err.(hasUnderlying); ok {
		err = eh.Underlying()
	}
	return errors.Cause(err)
}
