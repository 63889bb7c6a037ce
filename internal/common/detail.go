package common

import (
	"errors"
	"fmt"
)

// detailedError carries a client-facing message while still matching its
// sentinel kind through errors.Is.
type detailedError struct {
	kind error
	msg  string
}

func (e *detailedError) Error() string { return e.msg }

func (e *detailedError) Unwrap() error { return e.kind }

// Wrap returns an error with message msg that matches kind via errors.Is.
func Wrap(kind error, msg string) error {
	return &detailedError{kind: kind, msg: msg}
}

// Validationf returns an ErrorValidation with a formatted reason, e.g.
//
//	common.Validationf("quantity must be at least 1, got %d", q)
func Validationf(format string, args ...any) error {
	return Wrap(ErrorValidation, fmt.Sprintf(format, args...))
}

// Detail returns the client-facing message of the first detailed error in
// err's chain, or "" when there is none.
func Detail(err error) string {
	var d *detailedError
	if errors.As(err, &d) {
		return d.msg
	}
	return ""
}
