package work

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRange is returned when a range is built with start >= stop.
	ErrEmptyRange = errors.New("work: empty range")
	// ErrExhausted marks a Generate call on a generator with nothing left.
	ErrExhausted = errors.New("work: generator exhausted")
	// ErrInvalidBatch marks a Generate call with a non-positive size.
	ErrInvalidBatch = errors.New("work: batch size must be positive")
)

// ProtocolError is the panic value raised when a caller breaks the generator
// contract. It indicates a bug in the calling code.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *ProtocolError) Unwrap() error { return e.Err }

func violation(op string, err error) {
	panic(&ProtocolError{Op: op, Err: err})
}
