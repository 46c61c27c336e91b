package bsp

import (
	"errors"
	"fmt"
)

var (
	// ErrBspMissing means a board declares no BSP crate, or its BSP has no
	// top-level Board struct to reference.
	ErrBspMissing = errors.New("bsp missing")

	// ErrOther means the BSP source could not be read or parsed.
	ErrOther = errors.New("bsp could not be parsed")
)

// Error attaches the failing board to one of the sentinel kinds.
// errors.Is matches Kind; errors.As reaches the wrapped cause.
type Error struct {
	Kind  error
	Board string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board %q: %v: %v", e.Board, e.Kind, e.Err)
	}
	return fmt.Sprintf("board %q: %v", e.Board, e.Kind)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
