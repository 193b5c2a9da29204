package errs

import (
	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...interface{}) error {
	return cr.Newf(format, args...)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

// Mark tags err with a category so errors.Is(err, category) holds while the
// original message is kept. A nil err yields the category itself.
func Mark(err error, category error) error {
	if err == nil {
		return category
	}
	return cr.Mark(err, category)
}

// Markf builds a new error with the given message marked with category.
func Markf(category error, format string, args ...interface{}) error {
	return cr.Mark(cr.Newf(format, args...), category)
}

func Is(err, reference error) bool {
	return cr.Is(err, reference)
}

func As(err error, target interface{}) bool {
	return cr.As(err, target)
}
