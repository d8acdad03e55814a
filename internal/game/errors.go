package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand is returned (wrapped in a *CommandError) when a command
	// is not allowed in the current phase or carries a bad amount. The state is
	// left untouched.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrDealerTurnInProgress rejects commands that arrive while the dealer is
	// still drawing. It matches ErrInvalidCommand under errors.Is.
	ErrDealerTurnInProgress = fmt.Errorf("%w: dealer turn in progress", ErrInvalidCommand)

	// ErrShoeExhausted means no undealt card was left to draw
	ErrShoeExhausted = errors.New("shoe exhausted")
)

// CommandError describes a rejected command
type CommandError struct {
	Command Command
	Phase   Phase
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s rejected during %s: %s", e.Command, e.Phase, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func reject(cmd Command, phase Phase, format string, args ...any) error {
	return &CommandError{
		Command: cmd,
		Phase:   phase,
		Reason:  fmt.Sprintf(format, args...),
		Err:     ErrInvalidCommand,
	}
}
