package helper

import "fmt"

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new wrapped error for the given operation
func NewError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
