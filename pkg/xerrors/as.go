// Package xerrors provides small generic helpers over the standard errors
// package.
package xerrors

import "errors"

// AsA returns err as the target error type T, if err's chain contains one.
//
// This is a generic wrapper around [errors.As] for convenience.
func AsA[T error](err error) (_ T, ok bool) {
	var e T

	if errors.As(err, &e) {
		return e, true
	}

	var zero T

	return zero, false
}
