// Package fault - error instances
//
// Provides a single instance of each error kind so callers can use
// errors.Is on wrapped errors instead of matching strings.
package fault

import "errors"

// error base
type GenericError string

// to allow for different classes of errors
type InvalidError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrConversion        = ProcessError("conversion failed")
	ErrDecode            = InvalidError("decode failed")
	ErrDiscardedPacket   = InvalidError("packet is discarded")
	ErrEncode            = ProcessError("encode failed")
	ErrInvalidHashLength = InvalidError("message hash length is invalid")
	ErrMissingBatch      = InvalidError("batch is missing")
	ErrMissingHeader     = InvalidError("header is missing")
	ErrMissingSignature  = InvalidError("transaction has no signatures")
	ErrSanitize          = InvalidError("transaction failed sanitization")
	ErrTimestamp         = InvalidError("timestamp is invalid")
)

// the error interface methods
func (e GenericError) Error() string { return string(e) }
func (e InvalidError) Error() string { return string(e) }
func (e ProcessError) Error() string { return string(e) }

// determine the class of an error anywhere in its wrap chain
func IsErrInvalid(e error) bool { var target InvalidError; return errors.As(e, &target) }
func IsErrProcess(e error) bool { var target ProcessError; return errors.As(e, &target) }
