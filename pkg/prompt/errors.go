package prompt

import "errors"

var (
	// ErrAborted signals the operator aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoChoice is returned when a select prompt yields no known option.
	ErrNoChoice = errors.New("prompt: no option chosen")
)
