// Package errors is the single error import for devroots code. Repository and
// infrastructure failures are wrapped here with a stack trace, and domain
// errors are matched through Is after any number of wraps.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

func New(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join combines independent failures, such as the two probes of an integrity
// check, so that Is matches any of them.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Wrap records the stack and prefixes message. It returns nil for a nil err.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack is used at repository boundaries where the sentinel needs no extra message.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}
