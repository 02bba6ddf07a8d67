package chain

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrLimitExceeded = errors.New("traversal limit exceeded")
)

// TypeMismatchError reports a value handed to an entry point that is neither
// nil nor a *Node.
type TypeMismatchError struct {
	Got any
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: expected *chain.Node, got %T", ErrTypeMismatch, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
